// Package importer parses bank statement exports into transaction fields.
package importer

import (
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// ErrUnknownFormat is returned for a statement format with no registered
// parser.
var ErrUnknownFormat = errors.New("unknown statement format")

// Row is one parsed statement line. Amount keeps the statement's sign:
// negative = expense, positive = income.
type Row struct {
	Date     core.Date
	Merchant string
	Amount   decimal.Decimal
	Category *string
	Notes    *string
}

// Fields maps a row onto transaction fields for the given account bucket.
// The sign moves into the kind; the stored amount is always positive.
func (r Row) Fields(account string) core.TransactionFields {
	kind := core.Income
	amount := r.Amount
	if amount.Sign() < 0 {
		kind = core.Expense
		amount = amount.Neg()
	}
	return core.TransactionFields{
		Date:     r.Date,
		Amount:   amount,
		Kind:     kind,
		Merchant: r.Merchant,
		Account:  account,
		Category: r.Category,
		Notes:    r.Notes,
	}
}

// Parser converts a statement export into rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	return r
}
