// File: internal/usecase/prepaid_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// PrepaidUseCase issues and redeems multi-visit passes.
type PrepaidUseCase interface {
	Issue(ctx context.Context, orgID, customerID string, totalPasses int) (*model.PrepaidPass, error)
	// Redeem deducts count passes from the pass with the given code. A
	// redemption that would take the balance below zero fails with
	// ErrPassDepleted; one that exactly depletes it flips the status.
	Redeem(ctx context.Context, orgID, code string, count int, customerID, transactionID string) (*model.PrepaidPass, error)
}

var _ PrepaidUseCase = (*prepaidUC)(nil)

type prepaidUC struct {
	passes repository.PrepaidPassRepository
	log    *zerolog.Logger
	now    func() time.Time
}

func NewPrepaidUseCase(passes repository.PrepaidPassRepository, logger *zerolog.Logger, now func() time.Time) *prepaidUC {
	if now == nil {
		now = time.Now
	}
	return &prepaidUC{passes: passes, log: logger, now: now}
}

func (u *prepaidUC) Issue(ctx context.Context, orgID, customerID string, totalPasses int) (*model.PrepaidPass, error) {
	id := uuid.NewString()
	code := newPassCode()
	p, err := model.NewPrepaidPass(id, orgID, code, customerID, totalPasses, u.now())
	if err != nil {
		return nil, err
	}
	if err := u.passes.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *prepaidUC) Redeem(ctx context.Context, orgID, code string, count int, customerID, transactionID string) (*model.PrepaidPass, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	p, err := u.passes.FindByCode(ctx, repository.NoTX, orgID, code)
	if err != nil {
		return nil, err
	}
	r := model.Redemption{
		Count:         count,
		CustomerID:    customerID,
		TransactionID: transactionID,
		At:            u.now(),
	}
	return u.passes.RedeemGuarded(ctx, repository.NoTX, p.ID, r)
}

// newPassCode derives a short human-readable code; uniqueness is enforced by
// the storage layer.
func newPassCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:4] + "-" + raw[4:8]
}
