package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// Ensure scheduleRepo implements repository.ScheduleRepository
var _ repository.ScheduleRepository = (*scheduleRepo)(nil)

// scheduleRepo persists schedules as three tables: schedules, schedule_slots
// and slot_customers. Seat reservation is a single guarded UPDATE so the
// capacity invariant holds without row locks in application code.
type scheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *scheduleRepo {
	return &scheduleRepo{pool: pool}
}

func (r *scheduleRepo) Save(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	const q = `
INSERT INTO schedules (id, org_id, product_id, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (org_id, product_id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.OrgID, s.ProductID, s.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *scheduleRepo) FindByOrgAndProduct(ctx context.Context, tx repository.Tx, orgID, productID string) (*model.Schedule, error) {
	const q = `SELECT id, org_id, product_id, created_at FROM schedules WHERE org_id=$1 AND product_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, orgID, productID)
	if err != nil {
		return nil, err
	}
	var s model.Schedule
	if err := row.Scan(&s.ID, &s.OrgID, &s.ProductID, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if err := r.loadSlots(ctx, tx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepo) loadSlots(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	const q = `
SELECT id, location_id, at, available
  FROM schedule_slots
 WHERE schedule_id=$1
 ORDER BY at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, s.ID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	defer rows.Close()
	for rows.Next() {
		var slot model.ClassSlot
		if err := rows.Scan(&slot.ID, &slot.LocationID, &slot.At, &slot.Available); err != nil {
			return domain.ErrReadDatabaseRow
		}
		s.Slots = append(s.Slots, slot)
	}
	return rows.Err()
}

// EnsureSlot finds or creates the slot row, seeding available with the
// product capacity on first creation only.
func (r *scheduleRepo) EnsureSlot(ctx context.Context, tx repository.Tx, scheduleID, locationID string, at time.Time, capacity int) (string, error) {
	const q = `
INSERT INTO schedule_slots (id, schedule_id, location_id, at, available)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (schedule_id, location_id, at) DO UPDATE SET schedule_id=EXCLUDED.schedule_id
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, uuid.NewString(), scheduleID, locationID, at, capacity)
	if err != nil {
		return "", err
	}
	var id string
	if err := row.Scan(&id); err != nil {
		return "", domain.ErrOperationFailed
	}
	return id, nil
}

// SlotAvailability reads remaining seats; a slot nobody has booked yet
// reports the full product capacity.
func (r *scheduleRepo) SlotAvailability(ctx context.Context, tx repository.Tx, orgID, productID, locationID string, at time.Time) (int, error) {
	const q = `
SELECT ss.available
  FROM schedule_slots ss
  JOIN schedules s ON s.id = ss.schedule_id
 WHERE s.org_id=$1 AND s.product_id=$2 AND ss.location_id=$3 AND ss.at=$4;`
	row, err := pickRow(ctx, r.pool, tx, q, orgID, productID, locationID, at)
	if err != nil {
		return 0, err
	}
	var available int
	if err := row.Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			const pq = `SELECT capacity FROM products WHERE id=$1;`
			prow, err := pickRow(ctx, r.pool, tx, pq, productID)
			if err != nil {
				return 0, err
			}
			var capacity int
			if err := prow.Scan(&capacity); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return 0, domain.ErrNotFound
				}
				return 0, domain.ErrReadDatabaseRow
			}
			return capacity, nil
		}
		return 0, domain.ErrReadDatabaseRow
	}
	return available, nil
}

// ReserveSeat decrements availability and inserts the seat row in one
// statement. The WHERE clause is the capacity guard: available never goes
// negative, and a duplicate customer leaves the slot untouched.
func (r *scheduleRepo) ReserveSeat(ctx context.Context, tx repository.Tx, slotID, customerID, transactionID string) (repository.SeatOutcome, error) {
	const insert = `
INSERT INTO slot_customers (slot_id, customer_id, transaction_id, status)
SELECT $1, $2, $3, 'confirmed'
 WHERE EXISTS (
   SELECT 1 FROM schedule_slots WHERE id=$1 AND available > 0
 )
ON CONFLICT (slot_id, customer_id) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, insert, slotID, customerID, transactionID)
	if err != nil {
		return "", domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		// either the slot is full or the customer already holds a seat
		const dup = `SELECT 1 FROM slot_customers WHERE slot_id=$1 AND customer_id=$2;`
		row, err := pickRow(ctx, r.pool, tx, dup, slotID, customerID)
		if err != nil {
			return "", err
		}
		var one int
		if err := row.Scan(&one); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.SeatSlotFull, nil
			}
			return "", domain.ErrReadDatabaseRow
		}
		return repository.SeatDuplicate, nil
	}

	const decrement = `
UPDATE schedule_slots SET available = available - 1
 WHERE id=$1 AND available > 0;`
	dtag, err := execSQL(ctx, r.pool, tx, decrement, slotID)
	if err != nil {
		return "", domain.ErrOperationFailed
	}
	if dtag.RowsAffected() == 0 {
		// lost the race between insert and decrement; release the seat
		const release = `DELETE FROM slot_customers WHERE slot_id=$1 AND customer_id=$2;`
		if _, err := execSQL(ctx, r.pool, tx, release, slotID, customerID); err != nil {
			return "", domain.ErrOperationFailed
		}
		return repository.SeatSlotFull, nil
	}
	return repository.SeatReserved, nil
}
