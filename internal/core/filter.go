package core

import "strings"

// Filter captures the optional listing constraints. Every present
// constraint must hold (logical AND); an absent field places no
// restriction. Building a filter never fails.
type Filter struct {
	StartDate *Date // date >= StartDate
	EndDate   *Date // date <= EndDate
	Account   *string
	Category  *string
	Merchant  *string
	Kind      *Kind
}

// OptionalString maps a blank or whitespace-only value to "not set". A
// blank filter parameter has always meant unfiltered, never "match the
// empty string".
func OptionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// IsZero reports whether the filter places no constraints at all.
func (f Filter) IsZero() bool {
	return f.StartDate == nil && f.EndDate == nil && f.Account == nil &&
		f.Category == nil && f.Merchant == nil && f.Kind == nil
}

// Matches applies the filter to a single transaction. Account and category
// compare exactly and case-sensitively; merchant is a case-insensitive
// substring match.
func (f Filter) Matches(t Transaction) bool {
	if f.StartDate != nil && t.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.Date.After(*f.EndDate) {
		return false
	}
	if f.Account != nil && t.Account != *f.Account {
		return false
	}
	if f.Category != nil && (t.Category == nil || *t.Category != *f.Category) {
		return false
	}
	if f.Merchant != nil && !strings.Contains(strings.ToLower(t.Merchant), strings.ToLower(*f.Merchant)) {
		return false
	}
	if f.Kind != nil && t.Kind != *f.Kind {
		return false
	}
	return true
}
