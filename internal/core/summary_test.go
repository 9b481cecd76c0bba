package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date Date, amount string, kind Kind, merchant, account string, category *string) Transaction {
	return Transaction{
		Date:     date,
		Amount:   dec(amount),
		Kind:     kind,
		Merchant: merchant,
		Account:  account,
		Category: category,
	}
}

func TestSummarizeMonth(t *testing.T) {
	txs := []Transaction{
		tx(NewDate(2024, 1, 5), "100.00", Expense, "Cafe", "Checking", strptr("Food")),
		tx(NewDate(2024, 1, 10), "50.00", Expense, "Bus", "Checking", strptr("Transport")),
		tx(NewDate(2024, 1, 15), "2000.00", Income, "Employer", "Checking", nil),
	}

	s := Summarize(txs, NewDate(2024, 1, 1), NewDate(2024, 1, 31))

	assert.Equal(t, "2000.00", FormatAmount(s.TotalIncome))
	assert.Equal(t, "150.00", FormatAmount(s.TotalExpenses))
	assert.Equal(t, "1850.00", FormatAmount(s.NetCashFlow))
	assert.Equal(t, 3, s.TransactionCount)

	require.Len(t, s.CategoryBreakdown, 2)
	assert.Equal(t, "100.00", FormatAmount(s.CategoryBreakdown["Food"]))
	assert.Equal(t, "50.00", FormatAmount(s.CategoryBreakdown["Transport"]))

	require.Len(t, s.AccountBreakdown, 1)
	assert.Equal(t, "1850.00", FormatAmount(s.AccountBreakdown["Checking"]))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, NewDate(2024, 1, 1), NewDate(2024, 1, 31))

	assert.Equal(t, 0, s.TransactionCount)
	assert.True(t, s.NetCashFlow.IsZero())
	assert.Empty(t, s.CategoryBreakdown)
	assert.Empty(t, s.AccountBreakdown)
}

func TestSummarizeCategoryAddsUnsigned(t *testing.T) {
	// Income and expense in the same category add; they do not offset.
	txs := []Transaction{
		tx(NewDate(2024, 3, 1), "80.00", Expense, "Store", "Cash", strptr("Misc")),
		tx(NewDate(2024, 3, 2), "20.00", Income, "Refund", "Cash", strptr("Misc")),
	}

	s := Summarize(txs, NewDate(2024, 3, 1), NewDate(2024, 3, 31))

	assert.Equal(t, "100.00", FormatAmount(s.CategoryBreakdown["Misc"]))
	assert.Equal(t, "-60.00", FormatAmount(s.AccountBreakdown["Cash"]))
	assert.Equal(t, "-60.00", FormatAmount(s.NetCashFlow))
}

func TestSummarizeInvariants(t *testing.T) {
	txs := []Transaction{
		tx(NewDate(2024, 2, 1), "0.10", Expense, "A", "One", strptr("C1")),
		tx(NewDate(2024, 2, 2), "0.20", Expense, "B", "Two", strptr("C1")),
		tx(NewDate(2024, 2, 3), "0.30", Income, "C", "One", nil),
		tx(NewDate(2024, 2, 4), "999999999.99", Income, "D", "Two", strptr("C2")),
	}

	s := Summarize(txs, NewDate(2024, 2, 1), NewDate(2024, 2, 29))

	assert.True(t, s.NetCashFlow.Equal(s.TotalIncome.Sub(s.TotalExpenses)))

	accounts := decimal.Zero
	for _, v := range s.AccountBreakdown {
		accounts = accounts.Add(v)
	}
	assert.True(t, accounts.Equal(s.NetCashFlow))

	categorized := decimal.Zero
	for _, v := range s.CategoryBreakdown {
		categorized = categorized.Add(v)
	}
	assert.Equal(t, "1000000000.29", FormatAmount(categorized))
}

func TestNewPage(t *testing.T) {
	cases := []struct {
		total, size, pages int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{3, 2, 2},
		{100, 1, 100},
	}
	for _, tc := range cases {
		p := NewPage(nil, 1, tc.size, tc.total)
		assert.Equal(t, tc.pages, p.TotalPages, "total=%d size=%d", tc.total, tc.size)
	}
}
