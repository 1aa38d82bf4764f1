package repository

import (
	"context"
	"time"

	"gym-studio-pos/internal/domain/model"
)

// SeatOutcome is the result of an atomic seat reservation attempt.
type SeatOutcome string

const (
	SeatReserved  SeatOutcome = "reserved"
	SeatSlotFull  SeatOutcome = "slot_full"
	SeatDuplicate SeatOutcome = "duplicate"
)

// ScheduleRepository is the port for class schedules and their slots.
type ScheduleRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Schedule) error
	FindByOrgAndProduct(ctx context.Context, tx Tx, orgID, productID string) (*model.Schedule, error)
	// EnsureSlot finds or creates the slot for (schedule, location, at),
	// seeding Available with capacity on creation, and returns its id.
	EnsureSlot(ctx context.Context, tx Tx, scheduleID, locationID string, at time.Time, capacity int) (string, error)
	// SlotAvailability reports remaining seats for a product's slot; falls
	// back to the product capacity when the slot does not exist yet.
	SlotAvailability(ctx context.Context, tx Tx, orgID, productID, locationID string, at time.Time) (int, error)
	// ReserveSeat appends the customer to the slot and decrements Available
	// in one guarded update: the decrement only lands while Available > 0 and
	// the customer is not already present. Never drives Available negative.
	ReserveSeat(ctx context.Context, tx Tx, slotID, customerID, transactionID string) (SeatOutcome, error)
}
