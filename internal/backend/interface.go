package backend

import (
	"context"

	"tally/internal/services"
)

// CleanupFunc releases the resources a backend holds open.
type CleanupFunc func() error

// Result contains the wired transaction service and its cleanup function.
type Result struct {
	Service *services.TransactionService
	Cleanup CleanupFunc
}

// Factory creates a fully wired service stack from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Type selects the storage engine behind the service.
type Type string

const (
	SQLiteBackend   Type = "sqlite"
	PostgresBackend Type = "postgres"
)

func (t Type) IsValid() bool {
	return t == SQLiteBackend || t == PostgresBackend
}

func (t Type) String() string {
	return string(t)
}
