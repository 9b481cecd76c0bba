package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// Repository is the durable transaction store. Implementations scope every
// read and write to one owner and exclude soft-deleted rows here, at a
// single choke point, so no caller can forget the predicate.
type Repository interface {
	Add(ctx context.Context, tx core.Transaction) error
	GetByID(ctx context.Context, owner, id uuid.UUID) (core.Transaction, error)
	List(ctx context.Context, owner uuid.UUID, filter core.Filter, limit, offset int) ([]core.Transaction, error)
	Count(ctx context.Context, owner uuid.UUID, filter core.Filter) (int, error)
	ListByDateRange(ctx context.Context, owner uuid.UUID, start, end core.Date) ([]core.Transaction, error)
	Update(ctx context.Context, tx core.Transaction) error
	SoftDelete(ctx context.Context, owner, id uuid.UUID, when time.Time) error
	Ping(ctx context.Context) error
	Close() error
}

// tsFormat is a fixed-width UTC timestamp layout, so stored timestamps sort
// lexicographically in creation order.
const tsFormat = "2006-01-02T15:04:05.000000000Z"

const txColumns = `id, owner_id, tx_date, amount, kind, merchant, account, category,
	category_confidence, category_source, notes, import_batch_id,
	created_at, updated_at, deleted_at`

// sqlRepository implements Repository on database/sql. Queries are written
// with ? placeholders and rebound per driver.
type sqlRepository struct {
	db         *sql.DB
	dollarBind bool // rebind ? to $1..$n (Postgres)
}

func (r *sqlRepository) rebind(query string) string {
	if !r.dollarBind {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *sqlRepository) Add(ctx context.Context, tx core.Transaction) error {
	query := r.rebind(`
		INSERT INTO transactions (` + txColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		tx.ID.String(),
		tx.OwnerID.String(),
		tx.Date.String(),
		core.FormatAmount(tx.Amount),
		string(tx.Kind),
		tx.Merchant,
		tx.Account,
		nullString(tx.Category),
		nullInt(tx.CategoryConfidence),
		string(tx.CategorySource),
		nullString(tx.Notes),
		nullUUID(tx.ImportBatchID),
		tx.CreatedAt.UTC().Format(tsFormat),
		nullTime(tx.UpdatedAt),
		nullTime(tx.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *sqlRepository) GetByID(ctx context.Context, owner, id uuid.UUID) (core.Transaction, error) {
	query := r.rebind(`
		SELECT ` + txColumns + `
		FROM transactions
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`)

	row := r.db.QueryRowContext(ctx, query, id.String(), owner.String())
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return tx, nil
}

func (r *sqlRepository) List(ctx context.Context, owner uuid.UUID, filter core.Filter, limit, offset int) ([]core.Transaction, error) {
	where, args := filterClauses(owner, filter)
	query := r.rebind(`
		SELECT ` + txColumns + `
		FROM transactions
		WHERE ` + where + `
		ORDER BY tx_date DESC, created_at DESC
		LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *sqlRepository) Count(ctx context.Context, owner uuid.UUID, filter core.Filter) (int, error) {
	where, args := filterClauses(owner, filter)
	query := r.rebind(`SELECT COUNT(*) FROM transactions WHERE ` + where)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (r *sqlRepository) ListByDateRange(ctx context.Context, owner uuid.UUID, start, end core.Date) ([]core.Transaction, error) {
	query := r.rebind(`
		SELECT ` + txColumns + `
		FROM transactions
		WHERE owner_id = ? AND deleted_at IS NULL AND tx_date >= ? AND tx_date <= ?`)

	rows, err := r.db.QueryContext(ctx, query, owner.String(), start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions by date range: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions by date range: %w", err)
	}
	return txs, nil
}

func (r *sqlRepository) Update(ctx context.Context, tx core.Transaction) error {
	query := r.rebind(`
		UPDATE transactions
		SET tx_date = ?, amount = ?, kind = ?, merchant = ?, account = ?,
			category = ?, category_confidence = ?, category_source = ?,
			notes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`)

	res, err := r.db.ExecContext(ctx, query,
		tx.Date.String(),
		core.FormatAmount(tx.Amount),
		string(tx.Kind),
		tx.Merchant,
		tx.Account,
		nullString(tx.Category),
		nullInt(tx.CategoryConfidence),
		string(tx.CategorySource),
		nullString(tx.Notes),
		nullTime(tx.UpdatedAt),
		tx.ID.String(),
		tx.OwnerID.String(),
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *sqlRepository) SoftDelete(ctx context.Context, owner, id uuid.UUID, when time.Time) error {
	query := r.rebind(`
		UPDATE transactions
		SET deleted_at = ?
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`)

	res, err := r.db.ExecContext(ctx, query, when.UTC().Format(tsFormat), id.String(), owner.String())
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *sqlRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqlRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// filterClauses renders the owner scope, the soft-delete predicate, and the
// present filter constraints as an AND-ed WHERE body with ? placeholders.
func filterClauses(owner uuid.UUID, f core.Filter) (string, []any) {
	where := []string{"owner_id = ?", "deleted_at IS NULL"}
	args := []any{owner.String()}

	if f.StartDate != nil {
		where = append(where, "tx_date >= ?")
		args = append(args, f.StartDate.String())
	}
	if f.EndDate != nil {
		where = append(where, "tx_date <= ?")
		args = append(args, f.EndDate.String())
	}
	if f.Account != nil {
		where = append(where, "account = ?")
		args = append(args, *f.Account)
	}
	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *f.Category)
	}
	if f.Merchant != nil {
		where = append(where, `LOWER(merchant) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(*f.Merchant))+"%")
	}
	if f.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, string(*f.Kind))
	}

	return strings.Join(where, " AND "), args
}

// escapeLike neutralizes LIKE wildcards so a merchant filter matches them
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		idStr, ownerStr, dateStr, amountStr, kindStr string
		merchant, account, source                    string
		category, notes, batchStr                    sql.NullString
		confidence                                   sql.NullInt64
		createdStr                                   string
		updatedStr, deletedStr                       sql.NullString
	)

	err := row.Scan(&idStr, &ownerStr, &dateStr, &amountStr, &kindStr,
		&merchant, &account, &category, &confidence, &source,
		&notes, &batchStr, &createdStr, &updatedStr, &deletedStr)
	if err != nil {
		return core.Transaction{}, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", idStr, err)
	}
	owner, err := uuid.Parse(ownerStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse owner id %q: %w", ownerStr, err)
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	createdAt, err := time.Parse(tsFormat, createdStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdStr, err)
	}

	tx := core.Transaction{
		ID:             id,
		OwnerID:        owner,
		Date:           date,
		Amount:         amount,
		Kind:           core.Kind(kindStr),
		Merchant:       merchant,
		Account:        account,
		CategorySource: core.CategorySource(source),
		CreatedAt:      createdAt,
	}

	if category.Valid {
		v := category.String
		tx.Category = &v
	}
	if confidence.Valid {
		v := int(confidence.Int64)
		tx.CategoryConfidence = &v
	}
	if notes.Valid {
		v := notes.String
		tx.Notes = &v
	}
	if batchStr.Valid {
		batch, err := uuid.Parse(batchStr.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse import batch id %q: %w", batchStr.String, err)
		}
		tx.ImportBatchID = &batch
	}
	if updatedStr.Valid {
		t, err := time.Parse(tsFormat, updatedStr.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse updated_at %q: %w", updatedStr.String, err)
		}
		tx.UpdatedAt = &t
	}
	if deletedStr.Valid {
		t, err := time.Parse(tsFormat, deletedStr.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse deleted_at %q: %w", deletedStr.String, err)
		}
		tx.DeletedAt = &t
	}

	return tx, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullUUID(u *uuid.UUID) any {
	if u == nil {
		return nil
	}
	return u.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(tsFormat)
}
