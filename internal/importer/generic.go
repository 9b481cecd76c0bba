package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// GenericParser parses the plain CSV layout
// date,merchant,amount,category,notes with an ISO date and a signed
// decimal amount. Category and notes may be blank.
type GenericParser struct{}

const (
	genericNumFields   = 5
	genericColDate     = 0
	genericColMerchant = 1
	genericColAmount   = 2
	genericColCategory = 3
	genericColNotes    = 4
)

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic CSV statement and returns its rows.
func (p *GenericParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = genericNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := parseGenericRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseGenericRow(rec []string) (Row, error) {
	date, err := core.ParseDate(strings.TrimSpace(rec[genericColDate]))
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", rec[genericColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[genericColAmount]))
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", rec[genericColAmount], core.ErrInvalidAmount)
	}

	return Row{
		Date:     date,
		Merchant: strings.TrimSpace(rec[genericColMerchant]),
		Amount:   amount,
		Category: core.OptionalString(rec[genericColCategory]),
		Notes:    core.OptionalString(rec[genericColNotes]),
	}, nil
}
