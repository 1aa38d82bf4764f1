package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// Ensure admissionRepo implements repository.AdmissionRepository
var _ repository.AdmissionRepository = (*admissionRepo)(nil)

type admissionRepo struct {
	pool *pgxpool.Pool
}

func NewAdmissionRepo(pool *pgxpool.Pool) *admissionRepo {
	return &admissionRepo{pool: pool}
}

const admissionColumns = `
  id, org_id, location_id, customer_id, transaction_id, product_id, kind,
  start_at, end_at, created_at`

func (r *admissionRepo) Save(ctx context.Context, tx repository.Tx, a *model.Admission) error {
	const q = `
INSERT INTO admissions (
  id, org_id, location_id, customer_id, transaction_id, product_id, kind,
  start_at, end_at, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.OrgID, a.LocationID, a.CustomerID, a.TransactionID, a.ProductID, a.Kind,
		a.StartAt, a.EndAt, a.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *admissionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Admission, error) {
	const q = `SELECT` + admissionColumns + ` FROM admissions WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanAdmission(row)
}

// ListActiveByCustomer returns admissions still granting access at now:
// open-ended general admissions plus casual ones whose window covers now.
func (r *admissionRepo) ListActiveByCustomer(ctx context.Context, tx repository.Tx, orgID, customerID string, now time.Time) ([]*model.Admission, error) {
	const q = `
SELECT` + admissionColumns + `
  FROM admissions
 WHERE org_id=$1 AND customer_id=$2
   AND start_at <= $3
   AND (end_at IS NULL OR end_at > $3)
 ORDER BY start_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, orgID, customerID, now)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.Admission
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanAdmission(row pgx.Row) (*model.Admission, error) {
	var a model.Admission
	err := row.Scan(
		&a.ID, &a.OrgID, &a.LocationID, &a.CustomerID, &a.TransactionID, &a.ProductID, &a.Kind,
		&a.StartAt, &a.EndAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &a, nil
}
