package model

import (
	"time"

	"gym-studio-pos/internal/domain"
)

type PrepaidPassStatus string

const (
	PrepaidPassStatusActive   PrepaidPassStatus = "active"
	PrepaidPassStatusDepleted PrepaidPassStatus = "depleted"
)

// Redemption is one use of a prepaid pass.
type Redemption struct {
	Count         int
	CustomerID    string
	TransactionID string
	At            time.Time
}

// PrepaidPass is a multi-visit pass. Invariant:
// RemainingPasses = TotalPasses - sum of redemption counts, and the status
// flips to depleted exactly when RemainingPasses reaches zero.
type PrepaidPass struct {
	ID              string
	OrgID           string
	Code            string // unique
	CustomerID      string
	TotalPasses     int
	RemainingPasses int
	Redemptions     []Redemption
	Status          PrepaidPassStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPrepaidPass issues a fresh pass.
func NewPrepaidPass(id, orgID, code, customerID string, totalPasses int, now time.Time) (*PrepaidPass, error) {
	if id == "" || orgID == "" || code == "" || totalPasses <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &PrepaidPass{
		ID:              id,
		OrgID:           orgID,
		Code:            code,
		CustomerID:      customerID,
		TotalPasses:     totalPasses,
		RemainingPasses: totalPasses,
		Status:          PrepaidPassStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Redeem deducts count passes. A redemption that would take the balance below
// zero is rejected without mutating the pass.
func (p *PrepaidPass) Redeem(count int, customerID, transactionID string, now time.Time) error {
	if count <= 0 {
		return domain.ErrInvalidArgument
	}
	if p.RemainingPasses-count < 0 {
		return domain.ErrPassDepleted
	}
	p.RemainingPasses -= count
	p.Redemptions = append(p.Redemptions, Redemption{
		Count:         count,
		CustomerID:    customerID,
		TransactionID: transactionID,
		At:            now,
	})
	if p.RemainingPasses == 0 {
		p.Status = PrepaidPassStatusDepleted
	}
	p.UpdatedAt = now
	return nil
}
