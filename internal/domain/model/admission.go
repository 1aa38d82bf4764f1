package model

import (
	"time"

	"gym-studio-pos/internal/domain"
)

type AdmissionKind string

const (
	AdmissionKindCasual  AdmissionKind = "casual"  // time-bounded
	AdmissionKindGeneral AdmissionKind = "general" // open-ended
)

// Admission grants a customer access to the facility, created during
// post-payment fan-out for casual/general cart lines.
type Admission struct {
	ID            string
	OrgID         string
	LocationID    string
	CustomerID    string
	TransactionID string
	ProductID     string
	Kind          AdmissionKind
	StartAt       time.Time
	EndAt         *time.Time // nil for general admissions
	CreatedAt     time.Time
}

// NewCasualAdmission creates a time-bounded admission running from now for
// the purchased duration.
func NewCasualAdmission(id, orgID, locationID, customerID, transactionID, productID string, amount int, unit DurationUnit, now time.Time) (*Admission, error) {
	if id == "" || customerID == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	end := now.Add(unit.Duration(amount))
	return &Admission{
		ID:            id,
		OrgID:         orgID,
		LocationID:    locationID,
		CustomerID:    customerID,
		TransactionID: transactionID,
		ProductID:     productID,
		Kind:          AdmissionKindCasual,
		StartAt:       now,
		EndAt:         &end,
		CreatedAt:     now,
	}, nil
}

// NewGeneralAdmission creates an open-ended admission.
func NewGeneralAdmission(id, orgID, locationID, customerID, transactionID, productID string, now time.Time) (*Admission, error) {
	if id == "" || customerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Admission{
		ID:            id,
		OrgID:         orgID,
		LocationID:    locationID,
		CustomerID:    customerID,
		TransactionID: transactionID,
		ProductID:     productID,
		Kind:          AdmissionKindGeneral,
		StartAt:       now,
		CreatedAt:     now,
	}, nil
}
