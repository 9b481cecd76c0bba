// Package core holds the domain types of the transaction ledger.
//
// This file contains amount parsing and normalization. Amounts are exact
// fixed-point decimals with two fractional digits; floating point is never
// used for money.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a positive two-digit amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. More
// than two fractional digits, zero, negative values, and malformed input
// are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("12.345") -> error
//	ParseAmount("-1") -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount checks that d is strictly positive and carries no more
// than two fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if d.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount with exactly two fractional digits, the
// form it is persisted and served in.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
