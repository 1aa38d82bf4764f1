package repository

import (
	"context"

	"gym-studio-pos/internal/domain/model"
)

// CustomerRepository is the port for member records.
type CustomerRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Customer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Customer, error)
	// MarkAssigned flips the assigned flag, a side effect of seat allocation.
	MarkAssigned(ctx context.Context, tx Tx, id string) error
}
