package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/events"
	"tally/internal/importer"
	"tally/internal/storage"
)

// TransactionService owns the transaction lifecycle and orchestrates
// queries and summaries against the store. Every operation takes the owner
// id explicitly; the service keeps no per-request state.
type TransactionService struct {
	store   storage.Repository
	events  *events.Client
	parsers *importer.Registry
	now     func() time.Time
}

func NewTransactionService(store storage.Repository, eventsClient *events.Client) *TransactionService {
	return &TransactionService{
		store:   store,
		events:  eventsClient,
		parsers: importer.DefaultRegistry(),
		now:     time.Now,
	}
}

// Create assigns identity and timestamps, derives the category source, and
// persists a new transaction.
func (s *TransactionService) Create(ctx context.Context, owner uuid.UUID, fields core.TransactionFields) (core.Transaction, error) {
	return s.create(ctx, owner, fields, nil)
}

func (s *TransactionService) create(ctx context.Context, owner uuid.UUID, fields core.TransactionFields, batchID *uuid.UUID) (core.Transaction, error) {
	tx := core.Transaction{
		ID:             uuid.New(),
		OwnerID:        owner,
		Date:           fields.Date,
		Amount:         fields.Amount,
		Kind:           fields.Kind,
		Merchant:       fields.Merchant,
		Account:        fields.Account,
		Category:       fields.Category,
		CategorySource: core.DeriveCategorySource(fields.Category),
		Notes:          fields.Notes,
		ImportBatchID:  batchID,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.store.Add(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"owner", tx.OwnerID,
		"kind", tx.Kind,
		"amount", core.FormatAmount(tx.Amount))

	s.publishEvent(ctx, events.ActionCreated, tx.ID, owner)
	return tx, nil
}

// List returns one page of the owner's transactions matching filter,
// ordered newest date first with newest creation breaking ties, plus the
// total match count before pagination.
func (s *TransactionService) List(ctx context.Context, owner uuid.UUID, filter core.Filter, page, pageSize int) (core.Page, error) {
	if page < 1 {
		return core.Page{}, core.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > core.MaxPageSize {
		return core.Page{}, core.ErrInvalidPageSize
	}

	totalCount, err := s.store.Count(ctx, owner, filter)
	if err != nil {
		return core.Page{}, fmt.Errorf("count transactions: %w", err)
	}

	offset := (page - 1) * pageSize
	items, err := s.store.List(ctx, owner, filter, pageSize, offset)
	if err != nil {
		return core.Page{}, fmt.Errorf("list transactions: %w", err)
	}

	return core.NewPage(items, page, pageSize, totalCount), nil
}

// Get returns one live transaction, or ErrNotFound. A transaction that
// exists under a different owner is indistinguishable from one that does
// not exist.
func (s *TransactionService) Get(ctx context.Context, owner, id uuid.UUID) (core.Transaction, error) {
	return s.store.GetByID(ctx, owner, id)
}

// Update replaces all mutable fields wholesale, re-derives the category
// source, and stamps updatedAt. There are no partial patches.
func (s *TransactionService) Update(ctx context.Context, owner, id uuid.UUID, fields core.TransactionFields) (core.Transaction, error) {
	tx, err := s.store.GetByID(ctx, owner, id)
	if err != nil {
		return core.Transaction{}, err
	}

	now := s.now().UTC()
	tx.Date = fields.Date
	tx.Amount = fields.Amount
	tx.Kind = fields.Kind
	tx.Merchant = fields.Merchant
	tx.Account = fields.Account
	tx.Category = fields.Category
	tx.CategorySource = core.DeriveCategorySource(fields.Category)
	tx.Notes = fields.Notes
	tx.UpdatedAt = &now

	if err := s.store.Update(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID, "owner", tx.OwnerID)

	s.publishEvent(ctx, events.ActionUpdated, tx.ID, owner)
	return tx, nil
}

// Delete soft-deletes a live transaction. It reports true when the row was
// deleted and false when no live row matched; a repeated delete returns
// false. The row is never physically removed.
func (s *TransactionService) Delete(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	err := s.store.SoftDelete(ctx, owner, id, s.now().UTC())
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("soft delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction soft-deleted", "id", id, "owner", owner)

	s.publishEvent(ctx, events.ActionDeleted, id, owner)
	return true, nil
}

// Summary aggregates all live transactions in the inclusive date range.
// The full range is always scanned; summaries are exact, never sampled.
func (s *TransactionService) Summary(ctx context.Context, owner uuid.UUID, start, end core.Date) (core.Summary, error) {
	if start.After(end) {
		return core.Summary{}, core.ErrInvalidDateRange
	}

	txs, err := s.store.ListByDateRange(ctx, owner, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions for summary: %w", err)
	}

	return core.Summarize(txs, start, end), nil
}

// ImportCSV parses a bank statement and creates one transaction per row,
// all stamped with the same import batch id. The whole statement is
// rejected on the first invalid row.
func (s *TransactionService) ImportCSV(ctx context.Context, owner uuid.UUID, format, account string, r io.Reader) (uuid.UUID, int, error) {
	parser := s.parsers.Get(format)
	if parser == nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %q", importer.ErrUnknownFormat, format)
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("parse statement: %w", err)
	}

	// Validate the whole statement before touching the store so a bad row
	// cannot leave earlier rows persisted.
	fields := make([]core.TransactionFields, len(rows))
	for i, row := range rows {
		fields[i] = row.Fields(account)
		if err := fields[i].Validate(); err != nil {
			return uuid.Nil, 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	batchID := uuid.New()
	for i, f := range fields {
		if _, err := s.create(ctx, owner, f, &batchID); err != nil {
			return uuid.Nil, 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	slog.InfoContext(ctx, "Statement imported",
		"owner", owner,
		"batch", batchID,
		"rows", len(rows),
		"format", format)

	return batchID, len(rows), nil
}

// Ping reports whether the backing store is reachable.
func (s *TransactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publishEvent emits a transaction event when a publisher is configured.
// Event delivery is best-effort; a publish failure never fails the write.
func (s *TransactionService) publishEvent(ctx context.Context, action string, id, owner uuid.UUID) {
	if s.events == nil {
		return
	}
	event := events.NewTransactionEvent(id.String(), owner.String(), action)
	if err := s.events.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "action", action, "error", err)
	}
}

// Close releases the store and the event publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
