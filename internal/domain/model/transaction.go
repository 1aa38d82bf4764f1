package model

import (
	"time"

	"gym-studio-pos/internal/domain"
)

type TransactionStatus string

// Status values mirror the provider's payment-intent states.
const (
	TransactionStatusPending         TransactionStatus = "pending"
	TransactionStatusRequiresCapture TransactionStatus = "requires_capture"
	TransactionStatusSucceeded       TransactionStatus = "succeeded"
	TransactionStatusCancelled       TransactionStatus = "cancelled"
	TransactionStatusFailed          TransactionStatus = "failed"
)

// Transaction is the persisted record of one checkout attempt. The cart
// snapshot is immutable after creation; only Status and AllocatedAt move,
// driven by capture calls and provider webhooks.
type Transaction struct {
	ID               string // ULID, time-ordered
	OrgID            string
	LocationID       string
	EmployeeID       string
	CustomerID       *string
	Cart             Cart
	Status           TransactionStatus
	PaymentMethod    string
	Totals           Totals
	ProviderIntentID string
	// AllocatedAt marks that post-payment fan-out ran; it is set at most once
	// via a guarded update, which is what makes the fan-out exactly-once.
	AllocatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTransaction records a pending checkout attempt.
func NewTransaction(id, orgID, locationID, employeeID string, customerID *string, cart Cart, totals Totals, paymentMethod, intentID string, now time.Time) (*Transaction, error) {
	if id == "" || orgID == "" || employeeID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Transaction{
		ID:               id,
		OrgID:            orgID,
		LocationID:       locationID,
		EmployeeID:       employeeID,
		CustomerID:       customerID,
		Cart:             cart,
		Status:           TransactionStatusPending,
		PaymentMethod:    paymentMethod,
		Totals:           totals,
		ProviderIntentID: intentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Finalized reports whether the transaction reached a terminal payment state.
func (t *Transaction) Finalized() bool {
	switch t.Status {
	case TransactionStatusSucceeded, TransactionStatusCancelled, TransactionStatusFailed:
		return true
	}
	return false
}
