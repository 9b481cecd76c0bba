// Package audit maintains an append-only trail of transaction events.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"tally/internal/events"
)

// Entry is one line in the audit trail.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	OwnerID       string    `json:"ownerId"`
	TransactionID string    `json:"transactionId"`
	Action        string    `json:"action"`
}

const (
	logDir  = "logs"
	logFile = "transaction-audit.jsonl"
)

// FromEvent maps a consumed transaction event onto an audit entry.
func FromEvent(e *events.TransactionEvent) Entry {
	return Entry{
		Timestamp:     e.OccurredAt,
		OwnerID:       e.OwnerID,
		TransactionID: e.ID,
		Action:        e.Action,
	}
}

// Append writes entries to <root>/logs/transaction-audit.jsonl, one JSON
// object per line, creating the directory and file if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("writing audit entry: %w", err)
		}
	}
	return nil
}

// Read returns all entries in the audit trail, oldest first. A missing
// file is an empty trail, not an error.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logDir, logFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}
