package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"tally/internal/core"
)

const (
	defaultPageSize = 50
	maxBodyBytes    = 1 << 20
)

// parseListQuery extracts the filter and pagination from query parameters.
// Out-of-range pagination values are clamped rather than rejected; blank
// filter parameters mean unfiltered.
func parseListQuery(q url.Values) (core.Filter, int, int, error) {
	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Filter{}, 0, 0, fmt.Errorf("invalid page %q", v)
		}
		page = n
	}
	if page < 1 {
		page = 1
	}

	pageSize := defaultPageSize
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Filter{}, 0, 0, fmt.Errorf("invalid pageSize %q", v)
		}
		pageSize = n
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > core.MaxPageSize {
		pageSize = core.MaxPageSize
	}

	var filter core.Filter
	if v := q.Get("startDate"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, 0, 0, fmt.Errorf("invalid startDate %q", v)
		}
		filter.StartDate = &d
	}
	if v := q.Get("endDate"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, 0, 0, fmt.Errorf("invalid endDate %q", v)
		}
		filter.EndDate = &d
	}
	if v := q.Get("kind"); v != "" {
		k, err := core.ParseKind(v)
		if err != nil {
			return core.Filter{}, 0, 0, fmt.Errorf("invalid kind %q", v)
		}
		filter.Kind = &k
	}
	filter.Account = core.OptionalString(q.Get("account"))
	filter.Category = core.OptionalString(q.Get("category"))
	filter.Merchant = core.OptionalString(q.Get("merchant"))

	return filter, page, pageSize, nil
}

// parseSummaryQuery reads a date range. Each bound defaults independently:
// the start to the first of the current month, the end to one month after
// the start minus a day.
func parseSummaryQuery(q url.Values, now time.Time) (core.Date, core.Date, error) {
	var start, end core.Date

	if raw := q.Get("startDate"); raw != "" {
		parsed, err := core.ParseDate(raw)
		if err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("invalid startDate %q", raw)
		}
		start = parsed
	} else {
		year, month, _ := now.UTC().Date()
		start = core.NewDate(year, int(month), 1)
	}

	if raw := q.Get("endDate"); raw != "" {
		parsed, err := core.ParseDate(raw)
		if err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("invalid endDate %q", raw)
		}
		end = parsed
	} else {
		end = defaultEndDate(start)
	}

	return start, end, nil
}

// defaultEndDate adds one calendar month to the start, clamping to the
// shorter month's length, then steps back a day: a start on Jan 15 covers
// through Feb 14.
func defaultEndDate(start core.Date) core.Date {
	year, month, day := start.Date()
	if last := time.Date(year, month+2, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		day = last
	}
	next := time.Date(year, month+1, day, 0, 0, 0, 0, time.UTC)
	return core.Date{Time: next.AddDate(0, 0, -1)}
}

type transactionRequest struct {
	Date     string      `json:"date"`
	Amount   json.Number `json:"amount"`
	Kind     string      `json:"kind"`
	Merchant string      `json:"merchant"`
	Account  string      `json:"account"`
	Category *string     `json:"category"`
	Notes    *string     `json:"notes"`
}

// decodeTransactionRequest decodes and validates a create/update body.
func decodeTransactionRequest(r io.Reader) (core.TransactionFields, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.UseNumber()

	var req transactionRequest
	if err := dec.Decode(&req); err != nil {
		return core.TransactionFields{}, fmt.Errorf("invalid request body: %w", err)
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.TransactionFields{}, err
	}
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return core.TransactionFields{}, err
	}
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		return core.TransactionFields{}, err
	}

	fields := core.TransactionFields{
		Date:     date,
		Amount:   amount,
		Kind:     kind,
		Merchant: req.Merchant,
		Account:  req.Account,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if err := fields.Validate(); err != nil {
		return core.TransactionFields{}, err
	}
	return fields, nil
}
