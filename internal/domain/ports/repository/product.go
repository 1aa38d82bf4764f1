package repository

import (
	"context"

	"gym-studio-pos/internal/domain/model"
)

// ProductRepository is the read-only catalog port the core consumes.
type ProductRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Product) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Product, error)
	ListByOrg(ctx context.Context, tx Tx, orgID string) ([]*model.Product, error)
}

// OrgSettingsRepository resolves per-tenant configuration (tax rate, annual
// suspension cap).
type OrgSettingsRepository interface {
	Get(ctx context.Context, tx Tx, orgID string) (*model.OrgSettings, error)
	Save(ctx context.Context, tx Tx, s *model.OrgSettings) error
}
