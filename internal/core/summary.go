package core

import "github.com/shopspring/decimal"

// Summary aggregates the transactions of one owner over an inclusive date
// range.
type Summary struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetCashFlow      decimal.Decimal
	TransactionCount int
	// CategoryBreakdown sums amounts unsigned per category; uncategorized
	// transactions are excluded entirely.
	CategoryBreakdown map[string]decimal.Decimal
	// AccountBreakdown sums the signed net per account: +amount for income,
	// -amount for expense.
	AccountBreakdown map[string]decimal.Decimal
	StartDate        Date
	EndDate          Date
}

// Page is one page of a filtered listing plus the pre-pagination total.
type Page struct {
	Items      []Transaction
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// NewPage builds a Page, deriving the page count from the total.
func NewPage(items []Transaction, page, pageSize, totalCount int) Page {
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// Summarize computes the summary of a resolved transaction set. It is a
// pure function: all arithmetic is exact decimal and the input is not
// modified.
func Summarize(txs []Transaction, start, end Date) Summary {
	s := Summary{
		TotalIncome:       decimal.Zero,
		TotalExpenses:     decimal.Zero,
		TransactionCount:  len(txs),
		CategoryBreakdown: make(map[string]decimal.Decimal),
		AccountBreakdown:  make(map[string]decimal.Decimal),
		StartDate:         start,
		EndDate:           end,
	}

	for _, t := range txs {
		signed := t.Amount
		switch t.Kind {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			signed = t.Amount.Neg()
		}

		if t.Category != nil {
			bucket, ok := s.CategoryBreakdown[*t.Category]
			if !ok {
				bucket = decimal.Zero
			}
			s.CategoryBreakdown[*t.Category] = bucket.Add(t.Amount)
		}

		bucket, ok := s.AccountBreakdown[t.Account]
		if !ok {
			bucket = decimal.Zero
		}
		s.AccountBreakdown[t.Account] = bucket.Add(signed)
	}

	s.NetCashFlow = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}
