package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// Ensure customerRepo implements repository.CustomerRepository
var _ repository.CustomerRepository = (*customerRepo)(nil)

type customerRepo struct {
	pool *pgxpool.Pool
}

func NewCustomerRepo(pool *pgxpool.Pool) *customerRepo {
	return &customerRepo{pool: pool}
}

func (r *customerRepo) Save(ctx context.Context, tx repository.Tx, c *model.Customer) error {
	const q = `
INSERT INTO customers (id, org_id, name, email, assigned, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  name=$3, email=$4, assigned=$5;`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.OrgID, c.Name, c.Email, c.Assigned, c.CreatedAt)
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

func (r *customerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	const q = `SELECT id, org_id, name, email, assigned, created_at FROM customers WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var c model.Customer
	if err := row.Scan(&c.ID, &c.OrgID, &c.Name, &c.Email, &c.Assigned, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *customerRepo) MarkAssigned(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE customers SET assigned=TRUE WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
