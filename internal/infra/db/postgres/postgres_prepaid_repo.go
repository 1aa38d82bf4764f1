package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// Ensure prepaidRepo implements repository.PrepaidPassRepository
var _ repository.PrepaidPassRepository = (*prepaidRepo)(nil)

type prepaidRepo struct {
	pool *pgxpool.Pool
}

func NewPrepaidRepo(pool *pgxpool.Pool) *prepaidRepo {
	return &prepaidRepo{pool: pool}
}

const prepaidColumns = `
  id, org_id, code, customer_id, total_passes, remaining_passes, redemptions,
  status, created_at, updated_at`

func (r *prepaidRepo) Save(ctx context.Context, tx repository.Tx, p *model.PrepaidPass) error {
	const q = `
INSERT INTO prepaid_passes (
  id, org_id, code, customer_id, total_passes, remaining_passes, redemptions,
  status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  remaining_passes=$6, redemptions=$7, status=$8, updated_at=$10;`

	redemptions, err := json.Marshal(p.Redemptions)
	if err != nil {
		return err
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.OrgID, p.Code, p.CustomerID, p.TotalPasses, p.RemainingPasses, redemptions,
		p.Status, p.CreatedAt, p.UpdatedAt)
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

func (r *prepaidRepo) FindByCode(ctx context.Context, tx repository.Tx, orgID, code string) (*model.PrepaidPass, error) {
	const q = `SELECT` + prepaidColumns + ` FROM prepaid_passes WHERE org_id=$1 AND code=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, orgID, code)
	if err != nil {
		return nil, err
	}
	return scanPrepaid(row)
}

// RedeemGuarded lands the decrement only while the balance covers the count,
// flipping the status to depleted in the same statement when it reaches zero.
func (r *prepaidRepo) RedeemGuarded(ctx context.Context, tx repository.Tx, passID string, red model.Redemption) (*model.PrepaidPass, error) {
	const q = `
UPDATE prepaid_passes SET
  remaining_passes = remaining_passes - $2,
  redemptions = redemptions || $3::jsonb,
  status = CASE WHEN remaining_passes - $2 = 0 THEN 'depleted' ELSE status END,
  updated_at = $4
 WHERE id=$1 AND remaining_passes >= $2
RETURNING` + prepaidColumns + `;`

	entry, err := json.Marshal([]model.Redemption{red})
	if err != nil {
		return nil, err
	}
	row, err := pickRow(ctx, r.pool, tx, q, passID, red.Count, entry, red.At)
	if err != nil {
		return nil, err
	}
	p, err := scanPrepaid(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// row exists but the guard failed, or the pass is gone; disambiguate
			const check = `SELECT 1 FROM prepaid_passes WHERE id=$1;`
			crow, cerr := pickRow(ctx, r.pool, tx, check, passID)
			if cerr != nil {
				return nil, cerr
			}
			var one int
			if cerr := crow.Scan(&one); cerr != nil {
				if errors.Is(cerr, pgx.ErrNoRows) {
					return nil, domain.ErrNotFound
				}
				return nil, domain.ErrReadDatabaseRow
			}
			return nil, domain.ErrPassDepleted
		}
		return nil, err
	}
	return p, nil
}

func scanPrepaid(row pgx.Row) (*model.PrepaidPass, error) {
	var p model.PrepaidPass
	var redemptions []byte
	err := row.Scan(
		&p.ID, &p.OrgID, &p.Code, &p.CustomerID, &p.TotalPasses, &p.RemainingPasses, &redemptions,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(redemptions) > 0 {
		if err := json.Unmarshal(redemptions, &p.Redemptions); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &p, nil
}
