package repository

import (
	"context"

	"gym-studio-pos/internal/domain/model"
)

// PrepaidPassRepository is the port for prepaid passes.
type PrepaidPassRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PrepaidPass) error
	FindByCode(ctx context.Context, tx Tx, orgID, code string) (*model.PrepaidPass, error)
	// RedeemGuarded records a redemption atomically: the balance decrement
	// only lands while remaining_passes >= count. Returns
	// domain.ErrPassDepleted when the guard fails.
	RedeemGuarded(ctx context.Context, tx Tx, passID string, r model.Redemption) (*model.PrepaidPass, error)
}
