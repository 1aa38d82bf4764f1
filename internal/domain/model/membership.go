package model

import (
	"time"

	"gym-studio-pos/internal/domain"
)

type MembershipStatus string

const (
	MembershipStatusActive              MembershipStatus = "active"
	MembershipStatusPaused              MembershipStatus = "paused"
	MembershipStatusPendingCancellation MembershipStatus = "pending_cancellation"
	MembershipStatusCancelled           MembershipStatus = "cancelled"
)

type BillingUnit string

const (
	BillingUnitWeek  BillingUnit = "week"
	BillingUnitMonth BillingUnit = "month"
	BillingUnitYear  BillingUnit = "year"
)

// Advance returns t shifted forward by one billing period.
func (u BillingUnit) Advance(t time.Time) time.Time {
	switch u {
	case BillingUnitWeek:
		return t.AddDate(0, 0, 7)
	case BillingUnitYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Suspension is one resolved pause in the membership's history. The log is
// append-only; in-flight pauses live in Membership.CurrentSuspension and
// future ones in Membership.ScheduledPause.
type Suspension struct {
	PausedAt  time.Time
	ResumedAt *time.Time
	Days      int
	Scheduled bool // originated from a scheduled pause
	CreatedBy string
	Note      string
}

// ScheduledPause is the single future-dated pause a membership may carry.
type ScheduledPause struct {
	StartAt   time.Time
	ResumeAt  time.Time
	Days      int
	CreatedBy string
	Note      string
}

// Membership is one (customer, product) subscription. Lifecycle mutations go
// through the membership use case only; repositories persist whatever state
// the use case hands them under a status guard.
type Membership struct {
	ID                       string
	OrgID                    string
	LocationID               string
	CustomerID               string
	ProductID                string
	Status                   MembershipStatus
	Amount                   float64
	Unit                     BillingUnit
	NextBillingDate          time.Time
	CurrentSuspension        *Suspension
	ScheduledPause           *ScheduledPause
	Suspensions              []Suspension
	CancellationScheduledFor *time.Time
	CancellationReason       string
	ProviderSubscriptionID   string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// NewMembership creates an active membership with its first billing date one
// period out.
func NewMembership(id, orgID, locationID, customerID, productID string, amount float64, unit BillingUnit, now time.Time) (*Membership, error) {
	if id == "" || orgID == "" || customerID == "" || productID == "" || amount < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Membership{
		ID:              id,
		OrgID:           orgID,
		LocationID:      locationID,
		CustomerID:      customerID,
		ProductID:       productID,
		Status:          MembershipStatusActive,
		Amount:          amount,
		Unit:            unit,
		NextBillingDate: unit.Advance(now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SuspensionDaysUsed sums pause days charged against the allowance within the
// rolling 12-month window ending at now: resolved history entries, the open
// suspension if any, and an unactivated scheduled pause.
func (m *Membership) SuspensionDaysUsed(now time.Time) int {
	windowStart := now.AddDate(-1, 0, 0)
	used := 0
	for _, s := range m.Suspensions {
		if s.PausedAt.After(windowStart) {
			used += s.Days
		}
	}
	if m.CurrentSuspension != nil && m.CurrentSuspension.PausedAt.After(windowStart) {
		used += m.CurrentSuspension.Days
	}
	if m.ScheduledPause != nil {
		used += m.ScheduledPause.Days
	}
	return used
}

// RemainingSuspensionDays never returns a negative number.
func (m *Membership) RemainingSuspensionDays(annualCap int, now time.Time) int {
	rem := annualCap - m.SuspensionDaysUsed(now)
	if rem < 0 {
		return 0
	}
	return rem
}
