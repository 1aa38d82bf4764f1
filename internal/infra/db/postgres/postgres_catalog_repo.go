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

// Ensure productRepo implements repository.ProductRepository
var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *productRepo {
	return &productRepo{pool: pool}
}

func (r *productRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
INSERT INTO products (id, org_id, name, kind, unit_price, capacity, taxable, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  name=$3, kind=$4, unit_price=$5, capacity=$6, taxable=$7;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.OrgID, p.Name, p.Kind, p.UnitPrice, p.Capacity, p.Taxable, p.CreatedAt)
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

func (r *productRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	const q = `SELECT id, org_id, name, kind, unit_price, capacity, taxable, created_at FROM products WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanProduct(row)
}

func (r *productRepo) ListByOrg(ctx context.Context, tx repository.Tx, orgID string) ([]*model.Product, error) {
	const q = `SELECT id, org_id, name, kind, unit_price, capacity, taxable, created_at FROM products WHERE org_id=$1 ORDER BY name;`
	rows, err := queryRows(ctx, r.pool, tx, q, orgID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.OrgID, &p.Name, &p.Kind, &p.UnitPrice, &p.Capacity, &p.Taxable, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

// Ensure orgSettingsRepo implements repository.OrgSettingsRepository
var _ repository.OrgSettingsRepository = (*orgSettingsRepo)(nil)

type orgSettingsRepo struct {
	pool *pgxpool.Pool
}

func NewOrgSettingsRepo(pool *pgxpool.Pool) *orgSettingsRepo {
	return &orgSettingsRepo{pool: pool}
}

func (r *orgSettingsRepo) Get(ctx context.Context, tx repository.Tx, orgID string) (*model.OrgSettings, error) {
	const q = `
SELECT org_id, currency, tax_rate, annual_suspension_days, provider_account_id
  FROM org_settings WHERE org_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, orgID)
	if err != nil {
		return nil, err
	}
	var s model.OrgSettings
	if err := row.Scan(&s.OrgID, &s.Currency, &s.TaxRate, &s.AnnualSuspensionDays, &s.ProviderAccountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}

func (r *orgSettingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.OrgSettings) error {
	const q = `
INSERT INTO org_settings (org_id, currency, tax_rate, annual_suspension_days, provider_account_id)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (org_id) DO UPDATE SET
  currency=$2, tax_rate=$3, annual_suspension_days=$4, provider_account_id=$5;`
	_, err := execSQL(ctx, r.pool, tx, q, s.OrgID, s.Currency, s.TaxRate, s.AnnualSuspensionDays, s.ProviderAccountID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
