package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strptr(s string) *string { return &s }

func seedTx(t *testing.T, repo Repository, owner uuid.UUID, date core.Date, amount string, kind core.Kind, merchant, account string, category *string, createdAt time.Time) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		ID:             uuid.New(),
		OwnerID:        owner,
		Date:           date,
		Amount:         decimal.RequireFromString(amount),
		Kind:           kind,
		Merchant:       merchant,
		Account:        account,
		Category:       category,
		CategorySource: core.DeriveCategorySource(category),
		CreatedAt:      createdAt,
	}
	require.NoError(t, repo.Add(context.Background(), tx))
	return tx
}

func TestAddAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	owner := uuid.New()
	ctx := context.Background()

	created := time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)
	seeded := seedTx(t, repo, owner, core.NewDate(2024, 1, 5), "100.00", core.Expense, "Cafe", "Checking", strptr("Food"), created)

	got, err := repo.GetByID(ctx, owner, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, "2024-01-05", got.Date.String())
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, core.Expense, got.Kind)
	assert.Equal(t, "Cafe", got.Merchant)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Food", *got.Category)
	assert.Equal(t, core.SourceUser, got.CategorySource)
	assert.Nil(t, got.CategoryConfidence)
	assert.Nil(t, got.UpdatedAt)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestGetByIDScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	seeded := seedTx(t, repo, owner, core.NewDate(2024, 1, 5), "10.00", core.Expense, "Cafe", "Checking", nil, time.Now().UTC())

	_, err := repo.GetByID(ctx, other, seeded.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.GetByID(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListOrderingAndPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// Two on the same date to exercise the created_at tiebreak.
	older := seedTx(t, repo, owner, core.NewDate(2024, 1, 10), "1.00", core.Expense, "A", "Checking", nil, base)
	newer := seedTx(t, repo, owner, core.NewDate(2024, 1, 10), "2.00", core.Expense, "B", "Checking", nil, base.Add(time.Second))
	newest := seedTx(t, repo, owner, core.NewDate(2024, 1, 15), "3.00", core.Income, "C", "Checking", nil, base)
	oldest := seedTx(t, repo, owner, core.NewDate(2024, 1, 5), "4.00", core.Expense, "D", "Checking", nil, base)

	all, err := repo.List(ctx, owner, core.Filter{}, 100, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []uuid.UUID{newest.ID, newer.ID, older.ID, oldest.ID},
		[]uuid.UUID{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	// Page boundaries preserve the global order.
	page1, err := repo.List(ctx, owner, core.Filter{}, 2, 0)
	require.NoError(t, err)
	page2, err := repo.List(ctx, owner, core.Filter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Len(t, page2, 2)
	assert.Equal(t, newest.ID, page1[0].ID)
	assert.Equal(t, older.ID, page2[0].ID)

	count, err := repo.Count(ctx, owner, core.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestListFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	now := time.Now().UTC()

	cafe := seedTx(t, repo, owner, core.NewDate(2024, 1, 5), "100.00", core.Expense, "Cafe", "Checking", strptr("Food"), now)
	seedTx(t, repo, owner, core.NewDate(2024, 1, 10), "50.00", core.Expense, "Bus", "Checking", strptr("Transport"), now)
	salary := seedTx(t, repo, owner, core.NewDate(2024, 1, 15), "2000.00", core.Income, "Employer", "Savings", nil, now)

	t.Run("merchant substring case-insensitive", func(t *testing.T) {
		got, err := repo.List(ctx, owner, core.Filter{Merchant: strptr("CAF")}, 100, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cafe.ID, got[0].ID)
	})

	t.Run("account exact case-sensitive", func(t *testing.T) {
		got, err := repo.List(ctx, owner, core.Filter{Account: strptr("checking")}, 100, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("category exact", func(t *testing.T) {
		got, err := repo.List(ctx, owner, core.Filter{Category: strptr("Food")}, 100, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cafe.ID, got[0].ID)
	})

	t.Run("kind", func(t *testing.T) {
		kind := core.Income
		got, err := repo.List(ctx, owner, core.Filter{Kind: &kind}, 100, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, salary.ID, got[0].ID)
	})

	t.Run("date range", func(t *testing.T) {
		start := core.NewDate(2024, 1, 6)
		end := core.NewDate(2024, 1, 14)
		got, err := repo.List(ctx, owner, core.Filter{StartDate: &start, EndDate: &end}, 100, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Bus", got[0].Merchant)
	})

	t.Run("count matches filtered list", func(t *testing.T) {
		kind := core.Expense
		f := core.Filter{Kind: &kind, Account: strptr("Checking")}
		got, err := repo.List(ctx, owner, f, 100, 0)
		require.NoError(t, err)
		count, err := repo.Count(ctx, owner, f)
		require.NoError(t, err)
		assert.Equal(t, len(got), count)
		assert.Equal(t, 2, count)
	})
}

func TestMerchantWildcardsMatchLiterally(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	now := time.Now().UTC()

	seedTx(t, repo, owner, core.NewDate(2024, 1, 5), "5.00", core.Expense, "Shop 100% Natural", "Cash", nil, now)
	seedTx(t, repo, owner, core.NewDate(2024, 1, 6), "5.00", core.Expense, "Shop Natural", "Cash", nil, now)

	got, err := repo.List(ctx, owner, core.Filter{Merchant: strptr("100%")}, 100, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Shop 100% Natural", got[0].Merchant)
}

func TestSoftDeleteExclusion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	now := time.Now().UTC()

	tx := seedTx(t, repo, owner, core.NewDate(2024, 1, 5), "5.00", core.Expense, "Cafe", "Cash", nil, now)

	require.NoError(t, repo.SoftDelete(ctx, owner, tx.ID, now))

	_, err := repo.GetByID(ctx, owner, tx.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := repo.List(ctx, owner, core.Filter{}, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	count, err := repo.Count(ctx, owner, core.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	ranged, err := repo.ListByDateRange(ctx, owner, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, ranged)

	// Deleting again reports not found, same as a missing row.
	assert.ErrorIs(t, repo.SoftDelete(ctx, owner, tx.ID, now), core.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	created := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

	tx := seedTx(t, repo, owner, core.NewDate(2024, 1, 5), "100.00", core.Expense, "Cafe", "Checking", strptr("Food"), created)

	updatedAt := created.Add(time.Hour)
	tx.Date = core.NewDate(2024, 1, 6)
	tx.Amount = decimal.RequireFromString("42.50")
	tx.Merchant = "Bakery"
	tx.Category = nil
	tx.CategorySource = core.SourceNone
	tx.UpdatedAt = &updatedAt
	require.NoError(t, repo.Update(ctx, tx))

	got, err := repo.GetByID(ctx, owner, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", got.Date.String())
	assert.Equal(t, "42.50", core.FormatAmount(got.Amount))
	assert.Equal(t, "Bakery", got.Merchant)
	assert.Nil(t, got.Category)
	assert.Equal(t, core.SourceNone, got.CategorySource)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestUpdateMissingRow(t *testing.T) {
	repo := newTestRepo(t)
	owner := uuid.New()

	tx := core.Transaction{
		ID:             uuid.New(),
		OwnerID:        owner,
		Date:           core.NewDate(2024, 1, 5),
		Amount:         decimal.RequireFromString("1.00"),
		Kind:           core.Expense,
		Merchant:       "Cafe",
		Account:        "Cash",
		CategorySource: core.SourceNone,
		CreatedAt:      time.Now().UTC(),
	}
	assert.ErrorIs(t, repo.Update(context.Background(), tx), core.ErrNotFound)
}

func TestListByDateRangeInclusive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	now := time.Now().UTC()

	seedTx(t, repo, owner, core.NewDate(2024, 1, 1), "1.00", core.Expense, "A", "Cash", nil, now)
	seedTx(t, repo, owner, core.NewDate(2024, 1, 31), "2.00", core.Expense, "B", "Cash", nil, now)
	seedTx(t, repo, owner, core.NewDate(2024, 2, 1), "3.00", core.Expense, "C", "Cash", nil, now)

	got, err := repo.ListByDateRange(ctx, owner, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOtherOwnerInvisible(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()

	seedTx(t, repo, other, core.NewDate(2024, 1, 5), "9.99", core.Expense, "Cafe", "Cash", nil, now)

	got, err := repo.List(ctx, owner, core.Filter{}, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	ranged, err := repo.ListByDateRange(ctx, owner, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, ranged)
}
