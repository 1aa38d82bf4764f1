package repository

import (
	"context"
	"time"

	"gym-studio-pos/internal/domain/model"
)

// AdmissionRepository is the port for casual/general admission records.
type AdmissionRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Admission) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Admission, error)
	ListActiveByCustomer(ctx context.Context, tx Tx, orgID, customerID string, now time.Time) ([]*model.Admission, error)
}
