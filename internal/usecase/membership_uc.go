// File: internal/usecase/membership_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/adapter"
	"gym-studio-pos/internal/domain/ports/repository"
)

// SyncWarning reports a non-fatal billing-provider sync failure. The local
// state transition it accompanies has already committed and is authoritative;
// the provider is brought back in sync out-of-band.
type SyncWarning struct {
	Op     string
	Detail string
}

// PauseResult is returned by Pause.
type PauseResult struct {
	Membership *model.Membership
	Scheduled  bool
	Warning    *SyncWarning
}

// ResumeResult is returned by Resume.
type ResumeResult struct {
	Membership *model.Membership
	Credit     float64 // proration credit, may be zero
	Synced     bool
	Warning    *SyncWarning
}

// MembershipUseCase owns every state transition of a membership. No other
// code path writes membership lifecycle fields.
type MembershipUseCase interface {
	// Pause suspends an active membership for days. A future startAt makes
	// it a scheduled pause (status stays active until the pause worker
	// activates it); nil or past startAt pauses immediately.
	Pause(ctx context.Context, membershipID string, days int, startAt *time.Time, note, actor string) (*PauseResult, error)
	// CancelScheduledPause drops the pending scheduled pause.
	CancelScheduledPause(ctx context.Context, membershipID string) (*model.Membership, error)
	// Resume reactivates a paused membership, shifts the next billing date by
	// the suspension length and issues a proration credit for the unused part
	// of the current period.
	Resume(ctx context.Context, membershipID string) (*ResumeResult, error)
	// Cancel schedules cancellation for the end of the paid period; the
	// member keeps access until then.
	Cancel(ctx context.Context, membershipID, reason string) (*model.Membership, error)
	// Reactivate reverts a pending cancellation before it takes effect.
	Reactivate(ctx context.Context, membershipID string) (*model.Membership, error)
	RemainingSuspensionDays(ctx context.Context, membershipID string) (int, error)

	// Time-driven entry points, invoked by the sched workers.
	ActivateDuePauses(ctx context.Context, now time.Time) (int, error)
	ActivateDueResumes(ctx context.Context, now time.Time) (int, error)
	FinalizeDueCancellations(ctx context.Context, now time.Time) (int, error)

	// CreateFromLine materializes a membership sold through checkout fan-out.
	CreateFromLine(ctx context.Context, orgID, locationID string, line model.MembershipLine) (*model.Membership, error)
}

var _ MembershipUseCase = (*membershipUC)(nil)

type membershipUC struct {
	memberships repository.MembershipRepository
	orgs        repository.OrgSettingsRepository
	billing     adapter.BillingProvider
	tm          repository.TransactionManager
	log         *zerolog.Logger
	now         func() time.Time
}

// NewMembershipUseCase constructs the lifecycle manager. The billing provider
// is injected so tests can substitute a fake; now may be nil.
func NewMembershipUseCase(
	memberships repository.MembershipRepository,
	orgs repository.OrgSettingsRepository,
	billing adapter.BillingProvider,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
	now func() time.Time,
) *membershipUC {
	if now == nil {
		now = time.Now
	}
	return &membershipUC{memberships: memberships, orgs: orgs, billing: billing, tm: tm, log: logger, now: now}
}

func (u *membershipUC) Pause(ctx context.Context, membershipID string, days int, startAt *time.Time, note, actor string) (*PauseResult, error) {
	if days <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	var res *PauseResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status != model.MembershipStatusActive {
			return domain.ErrInvalidStateTransition
		}

		settings, err := u.orgs.Get(ctx, tx, m.OrgID)
		if err != nil {
			return err
		}
		now := u.now()
		if days > m.RemainingSuspensionDays(settings.AnnualSuspensionDays, now) {
			return domain.ErrSuspensionLimitExceeded
		}

		if startAt != nil && startAt.After(now) {
			// at most one unresolved scheduled pause per membership
			if m.ScheduledPause != nil {
				return domain.ErrAlreadyExists
			}
			m.ScheduledPause = &model.ScheduledPause{
				StartAt:   *startAt,
				ResumeAt:  startAt.AddDate(0, 0, days),
				Days:      days,
				CreatedBy: actor,
				Note:      note,
			}
			m.UpdatedAt = now
			if err := u.memberships.UpdateGuarded(ctx, tx, m, model.MembershipStatusActive); err != nil {
				return err
			}
			res = &PauseResult{Membership: m, Scheduled: true}
			return nil
		}

		m.Status = model.MembershipStatusPaused
		m.CurrentSuspension = &model.Suspension{
			PausedAt:  now,
			Days:      days,
			CreatedBy: actor,
			Note:      note,
		}
		m.UpdatedAt = now
		if err := u.memberships.UpdateGuarded(ctx, tx, m, model.MembershipStatusActive); err != nil {
			return err
		}
		res = &PauseResult{Membership: m}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// provider sync happens after commit; it never rolls the pause back
	if !res.Scheduled {
		res.Warning = u.syncPausedSubscription(ctx, res.Membership, days)
	}
	return res, nil
}

// syncPausedSubscription shifts the provider's billing-cycle anchor by the
// suspension length. Failures are downgraded to a warning: the local pause
// has already committed and is never rolled back for a remote sync failure.
func (u *membershipUC) syncPausedSubscription(ctx context.Context, m *model.Membership, days int) *SyncWarning {
	if m.ProviderSubscriptionID == "" {
		return nil
	}
	anchor := m.NextBillingDate.AddDate(0, 0, days)
	if _, err := u.billing.UpdateSubscription(ctx, m.ProviderSubscriptionID, adapter.SubscriptionUpdate{BillingCycleAnchor: &anchor}); err != nil {
		u.log.Warn().Err(err).Str("membership_id", m.ID).Msg("provider pause sync failed")
		return &SyncWarning{Op: "update_subscription", Detail: err.Error()}
	}
	return nil
}

func (u *membershipUC) CancelScheduledPause(ctx context.Context, membershipID string) (*model.Membership, error) {
	var out *model.Membership
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.ScheduledPause == nil {
			return domain.ErrNoScheduledPause
		}
		m.ScheduledPause = nil
		m.UpdatedAt = u.now()
		if err := u.memberships.UpdateGuarded(ctx, tx, m, m.Status); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *membershipUC) Resume(ctx context.Context, membershipID string) (*ResumeResult, error) {
	var res *ResumeResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status != model.MembershipStatusPaused || m.CurrentSuspension == nil {
			return domain.ErrInvalidStateTransition
		}

		now := u.now()
		credit := prorationCredit(m, now)

		s := *m.CurrentSuspension
		s.ResumedAt = &now
		m.Suspensions = append(m.Suspensions, s)
		m.CurrentSuspension = nil
		m.NextBillingDate = m.NextBillingDate.AddDate(0, 0, s.Days)
		m.Status = model.MembershipStatusActive
		m.UpdatedAt = now
		if err := u.memberships.UpdateGuarded(ctx, tx, m, model.MembershipStatusPaused); err != nil {
			return err
		}
		res = &ResumeResult{Membership: m, Credit: credit, Synced: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// credit note after commit; a provider failure downgrades to a warning
	m := res.Membership
	if res.Credit > 0 && m.ProviderSubscriptionID != "" {
		if _, err := u.billing.CreateCreditNote(ctx, m.CustomerID, model.MinorUnits(res.Credit)); err != nil {
			u.log.Warn().Err(err).Str("membership_id", m.ID).Msg("provider credit note failed")
			res.Synced = false
			res.Warning = &SyncWarning{Op: "create_credit_note", Detail: err.Error()}
		}
	}
	return res, nil
}

// prorationCredit is the unused fraction of the current billing period times
// the membership amount, measured at resume time. Clamped to [0, amount].
func prorationCredit(m *model.Membership, now time.Time) float64 {
	periodEnd := m.NextBillingDate
	periodStart := retreat(m.Unit, periodEnd)
	periodLen := periodEnd.Sub(periodStart)
	if periodLen <= 0 || !now.Before(periodEnd) {
		return 0
	}
	unused := float64(periodEnd.Sub(now)) / float64(periodLen)
	if unused > 1 {
		unused = 1
	}
	return model.RoundCents(m.Amount * unused)
}

func retreat(u model.BillingUnit, t time.Time) time.Time {
	switch u {
	case model.BillingUnitWeek:
		return t.AddDate(0, 0, -7)
	case model.BillingUnitYear:
		return t.AddDate(-1, 0, 0)
	default:
		return t.AddDate(0, -1, 0)
	}
}

func (u *membershipUC) Cancel(ctx context.Context, membershipID, reason string) (*model.Membership, error) {
	var out *model.Membership
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status != model.MembershipStatusActive && m.Status != model.MembershipStatusPaused {
			return domain.ErrInvalidStateTransition
		}
		expected := m.Status
		// access runs until the end of the period already paid for
		end := m.NextBillingDate
		m.Status = model.MembershipStatusPendingCancellation
		m.CancellationScheduledFor = &end
		m.CancellationReason = reason
		m.UpdatedAt = u.now()
		if err := u.memberships.UpdateGuarded(ctx, tx, m, expected); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *membershipUC) Reactivate(ctx context.Context, membershipID string) (*model.Membership, error) {
	var out *model.Membership
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status != model.MembershipStatusPendingCancellation {
			return domain.ErrInvalidStateTransition
		}
		m.Status = model.MembershipStatusActive
		m.CancellationScheduledFor = nil
		m.CancellationReason = ""
		m.UpdatedAt = u.now()
		if err := u.memberships.UpdateGuarded(ctx, tx, m, model.MembershipStatusPendingCancellation); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *membershipUC) RemainingSuspensionDays(ctx context.Context, membershipID string) (int, error) {
	m, err := u.memberships.FindByID(ctx, repository.NoTX, membershipID)
	if err != nil {
		return 0, err
	}
	settings, err := u.orgs.Get(ctx, repository.NoTX, m.OrgID)
	if err != nil {
		return 0, err
	}
	return m.RemainingSuspensionDays(settings.AnnualSuspensionDays, u.now()), nil
}

// ActivateDuePauses flips scheduled pauses whose start date has arrived into
// real suspensions. Called by the pause worker.
func (u *membershipUC) ActivateDuePauses(ctx context.Context, now time.Time) (int, error) {
	due, err := u.memberships.ListScheduledPausesDue(ctx, repository.NoTX, now, 200)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range due {
		sp := m.ScheduledPause
		if sp == nil {
			continue
		}
		m.Status = model.MembershipStatusPaused
		m.CurrentSuspension = &model.Suspension{
			PausedAt:  sp.StartAt,
			Days:      sp.Days,
			Scheduled: true,
			CreatedBy: sp.CreatedBy,
			Note:      sp.Note,
		}
		m.ScheduledPause = nil
		m.UpdatedAt = now
		if err := u.memberships.UpdateGuarded(ctx, repository.NoTX, m, model.MembershipStatusActive); err != nil {
			u.log.Error().Err(err).Str("membership_id", m.ID).Msg("activate scheduled pause failed")
			continue
		}
		if w := u.syncPausedSubscription(ctx, m, m.CurrentSuspension.Days); w != nil {
			u.log.Warn().Str("membership_id", m.ID).Str("detail", w.Detail).Msg("pause activated with provider sync warning")
		}
		n++
	}
	return n, nil
}

// ActivateDueResumes resumes memberships whose scheduled suspension window
// has elapsed.
func (u *membershipUC) ActivateDueResumes(ctx context.Context, now time.Time) (int, error) {
	due, err := u.memberships.ListPausedResumesDue(ctx, repository.NoTX, now, 200)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range due {
		if _, err := u.Resume(ctx, m.ID); err != nil {
			u.log.Error().Err(err).Str("membership_id", m.ID).Msg("scheduled resume failed")
			continue
		}
		n++
	}
	return n, nil
}

// FinalizeDueCancellations moves pending cancellations past their scheduled
// date into the terminal cancelled state and cancels the provider
// subscription.
func (u *membershipUC) FinalizeDueCancellations(ctx context.Context, now time.Time) (int, error) {
	due, err := u.memberships.ListCancellationsDue(ctx, repository.NoTX, now, 200)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range due {
		m.Status = model.MembershipStatusCancelled
		m.UpdatedAt = now
		if err := u.memberships.UpdateGuarded(ctx, repository.NoTX, m, model.MembershipStatusPendingCancellation); err != nil {
			u.log.Error().Err(err).Str("membership_id", m.ID).Msg("finalize cancellation failed")
			continue
		}
		if m.ProviderSubscriptionID != "" {
			if _, err := u.billing.CancelSubscription(ctx, m.ProviderSubscriptionID); err != nil {
				u.log.Warn().Err(err).Str("membership_id", m.ID).Msg("provider subscription cancel failed")
			}
		}
		n++
	}
	return n, nil
}

func (u *membershipUC) CreateFromLine(ctx context.Context, orgID, locationID string, line model.MembershipLine) (*model.Membership, error) {
	m, err := model.NewMembership(uuid.NewString(), orgID, locationID, line.CustomerID, line.ProductID, line.Amount, line.Unit, u.now())
	if err != nil {
		return nil, err
	}
	if err := u.memberships.Save(ctx, repository.NoTX, m); err != nil {
		return nil, err
	}
	return m, nil
}
