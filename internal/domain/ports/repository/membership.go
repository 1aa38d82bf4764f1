package repository

import (
	"context"
	"time"

	"gym-studio-pos/internal/domain/model"
)

// MembershipRepository is the port for membership persistence.
type MembershipRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Membership) error
	// UpdateGuarded persists m only if the stored row still has the expected
	// status. Returns domain.ErrInvalidStateTransition when the guard fails,
	// which closes the read-modify-write race on concurrent lifecycle calls.
	UpdateGuarded(ctx context.Context, tx Tx, m *model.Membership, expected model.MembershipStatus) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Membership, error)
	FindByCustomer(ctx context.Context, tx Tx, orgID, customerID string) ([]*model.Membership, error)
	// ListScheduledPausesDue returns active memberships whose scheduled pause
	// start has passed.
	ListScheduledPausesDue(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.Membership, error)
	// ListPausedResumesDue returns paused memberships whose scheduled
	// suspension window has fully elapsed.
	ListPausedResumesDue(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.Membership, error)
	// ListCancellationsDue returns pending_cancellation memberships whose
	// scheduled cancellation date has passed.
	ListCancellationsDue(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.Membership, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.MembershipStatus]int, error)
}
