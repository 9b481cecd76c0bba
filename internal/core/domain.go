package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	SourceNone      CategorySource = "None"
	SourceUser      CategorySource = "User"
	SourceAutomated CategorySource = "Automated"
)

const (
	MaxMerchantLen = 200
	MaxAccountLen  = 100
	MaxCategoryLen = 100
	MaxNotesLen    = 500

	MaxPageSize = 100
)

type (
	// Kind is the direction of a transaction. Amounts are always positive;
	// the kind carries the sign.
	Kind string

	// CategorySource records where a transaction's category came from.
	// Automated sourcing is reserved for a future categorizer and is never
	// assigned by this service.
	CategorySource string

	// Date is a calendar date with no time component, fixed to UTC.
	Date struct {
		time.Time
	}

	// Transaction is a single ledger entry owned by one user.
	Transaction struct {
		ID                 uuid.UUID
		OwnerID            uuid.UUID
		Date               Date
		Amount             decimal.Decimal
		Kind               Kind
		Merchant           string
		Account            string
		Category           *string
		CategoryConfidence *int
		CategorySource     CategorySource
		Notes              *string
		ImportBatchID      *uuid.UUID
		CreatedAt          time.Time
		UpdatedAt          *time.Time
		DeletedAt          *time.Time
	}

	// TransactionFields carries the caller-settable fields for a create or a
	// wholesale update. Derived fields (id, timestamps, category source) are
	// never part of it.
	TransactionFields struct {
		Date     Date
		Amount   decimal.Decimal
		Kind     Kind
		Merchant string
		Account  string
		Category *string
		Notes    *string
	}
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrInvalidPage      = errors.New("page must be at least 1")
	ErrInvalidPageSize  = errors.New("page size must be between 1 and 100")
	ErrInvalidDateRange = errors.New("start date must not be after end date")

	ErrInvalidDate     = errors.New("invalid date")
	ErrFutureDate      = errors.New("date cannot be in the future")
	ErrInvalidAmount   = errors.New("amount must be positive with at most two decimal places")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrEmptyMerchant   = errors.New("empty merchant")
	ErrMerchantTooLong = errors.New("merchant too long (max 200 characters)")
	ErrEmptyAccount    = errors.New("empty account")
	ErrAccountTooLong  = errors.New("account too long (max 100 characters)")
	ErrCategoryTooLong = errors.New("category too long (max 100 characters)")
	ErrNotesTooLong    = errors.New("notes too long (max 500 characters)")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in ISO form (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before reports whether d falls on an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseKind parses a transaction kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

// IsValid returns true for a recognized kind.
func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// DeriveCategorySource computes the provenance tag from the presence of a
// caller-supplied category. Recomputed on every write; never trusted from
// the caller.
func DeriveCategorySource(category *string) CategorySource {
	if category != nil {
		return SourceUser
	}
	return SourceNone
}

func (f TransactionFields) Validate() error {
	if f.Date.IsZero() {
		return ErrInvalidDate
	}
	if f.Date.After(DateOf(time.Now())) {
		return ErrFutureDate
	}
	if err := ValidateAmount(f.Amount); err != nil {
		return err
	}
	if !f.Kind.IsValid() {
		return ErrInvalidKind
	}
	if len(strings.TrimSpace(f.Merchant)) == 0 {
		return ErrEmptyMerchant
	}
	if len(f.Merchant) > MaxMerchantLen {
		return ErrMerchantTooLong
	}
	if len(strings.TrimSpace(f.Account)) == 0 {
		return ErrEmptyAccount
	}
	if len(f.Account) > MaxAccountLen {
		return ErrAccountTooLong
	}
	if f.Category != nil && len(*f.Category) > MaxCategoryLen {
		return ErrCategoryTooLong
	}
	if f.Notes != nil && len(*f.Notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}
