package repository

import (
	"context"
	"time"

	"gym-studio-pos/internal/domain/model"
)

// TransactionRepository is the port for checkout transactions.
type TransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Transaction, error)
	FindByProviderIntentID(ctx context.Context, tx Tx, intentID string) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.TransactionStatus) error
	// MarkAllocated sets allocated_at only when it is still unset and reports
	// whether this call won the race. Fan-out runs exactly once per
	// transaction because only the winner proceeds.
	MarkAllocated(ctx context.Context, tx Tx, id string, at time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Transaction, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.TransactionStatus]int, error)
}
