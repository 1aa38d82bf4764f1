package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// Ensure transactionRepo implements repository.TransactionRepository
var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const transactionColumns = `
  id, org_id, location_id, employee_id, customer_id, cart, status,
  payment_method, subtotal, discount_amount, tax, total,
  provider_intent_id, allocated_at, created_at, updated_at`

func (r *transactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (
  id, org_id, location_id, employee_id, customer_id, cart, status,
  payment_method, subtotal, discount_amount, tax, total,
  provider_intent_id, allocated_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
  status=$7, allocated_at=$14, updated_at=$16;`

	cart, err := json.Marshal(t.Cart)
	if err != nil {
		return err
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		t.ID, t.OrgID, t.LocationID, t.EmployeeID, t.CustomerID, cart, t.Status,
		t.PaymentMethod, t.Totals.Subtotal, t.Totals.DiscountAmount, t.Totals.Tax, t.Totals.Total,
		t.ProviderIntentID, t.AllocatedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	const q = `SELECT` + transactionColumns + ` FROM transactions WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *transactionRepo) FindByProviderIntentID(ctx context.Context, tx repository.Tx, intentID string) (*model.Transaction, error) {
	const q = `SELECT` + transactionColumns + ` FROM transactions WHERE provider_intent_id=$1;`
	return r.queryOne(ctx, tx, q, intentID)
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.TransactionStatus) error {
	const q = `UPDATE transactions SET status=$2, updated_at=NOW() WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllocated is the at-most-once gate for post-payment fan-out: the update
// only lands while allocated_at is still NULL, and the caller learns whether
// it won the race.
func (r *transactionRepo) MarkAllocated(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	const q = `
UPDATE transactions SET allocated_at=$2, updated_at=$2
 WHERE id=$1 AND allocated_at IS NULL;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

func (r *transactionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Transaction, error) {
	const q = `
SELECT` + transactionColumns + `
  FROM transactions
 WHERE status IN ('pending','requires_capture')
   AND created_at <= $1
 ORDER BY created_at ASC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, cutoff, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *transactionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.TransactionStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM transactions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	out := make(map[model.TransactionStatus]int)
	for rows.Next() {
		var status model.TransactionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *transactionRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Transaction, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrNotFound
		default:
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return t, nil
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	var cart []byte
	err := row.Scan(
		&t.ID, &t.OrgID, &t.LocationID, &t.EmployeeID, &t.CustomerID, &cart, &t.Status,
		&t.PaymentMethod, &t.Totals.Subtotal, &t.Totals.DiscountAmount, &t.Totals.Tax, &t.Totals.Total,
		&t.ProviderIntentID, &t.AllocatedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(cart) > 0 {
		if err := json.Unmarshal(cart, &t.Cart); err != nil {
			return nil, err
		}
	}
	return &t, nil
}
