// File: internal/usecase/allocation_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// SkippedSeat records a customer who paid for a slot that was exhausted by a
// concurrent checkout before their seat write landed. Skips are reported, not
// silently dropped, so staff can compensate out-of-band.
type SkippedSeat struct {
	ProductID  string
	LocationID string
	At         time.Time
	CustomerID string
}

// AllocationReport summarizes one fan-out run.
type AllocationReport struct {
	Seats      int
	Admissions int
	Skipped    []SkippedSeat
}

// AllocationUseCase performs the post-payment fan-out for schedule-bound and
// admission cart lines. Callers must guarantee at-most-once invocation per
// succeeded transaction (the checkout use case does, via a guarded
// allocated_at update).
type AllocationUseCase interface {
	Allocate(ctx context.Context, t *model.Transaction) (*AllocationReport, error)
}

var _ AllocationUseCase = (*allocationUC)(nil)

type allocationUC struct {
	schedules  repository.ScheduleRepository
	admissions repository.AdmissionRepository
	customers  repository.CustomerRepository
	products   repository.ProductRepository
	log        *zerolog.Logger
	now        func() time.Time
}

func NewAllocationUseCase(
	schedules repository.ScheduleRepository,
	admissions repository.AdmissionRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	logger *zerolog.Logger,
	now func() time.Time,
) *allocationUC {
	if now == nil {
		now = time.Now
	}
	return &allocationUC{schedules: schedules, admissions: admissions, customers: customers, products: products, log: logger, now: now}
}

func (u *allocationUC) Allocate(ctx context.Context, t *model.Transaction) (*AllocationReport, error) {
	report := &AllocationReport{}
	for _, line := range t.Cart.Lines {
		var err error
		switch l := line.(type) {
		case model.ClassLine:
			err = u.allocateSeats(ctx, t, l.ProductID, l.Variations, report)
		case model.CourseLine:
			err = u.allocateSeats(ctx, t, l.ProductID, l.Variations, report)
		case model.CasualLine:
			err = u.recordCasual(ctx, t, l, report)
		case model.GeneralLine:
			err = u.recordGeneral(ctx, t, l, report)
		}
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (u *allocationUC) allocateSeats(ctx context.Context, t *model.Transaction, productID string, vars []model.Variation, report *AllocationReport) error {
	product, err := u.products.FindByID(ctx, repository.NoTX, productID)
	if err != nil {
		return err
	}
	sched, err := u.ensureSchedule(ctx, t.OrgID, productID)
	if err != nil {
		return err
	}
	for _, v := range vars {
		for _, at := range v.SlotTimes {
			slotID, err := u.schedules.EnsureSlot(ctx, repository.NoTX, sched.ID, v.LocationID, at, product.Capacity)
			if err != nil {
				return err
			}
			for _, tier := range v.Tiers {
				for _, customerID := range tier.CustomerIDs {
					outcome, err := u.schedules.ReserveSeat(ctx, repository.NoTX, slotID, customerID, t.ID)
					if err != nil {
						return err
					}
					switch outcome {
					case repository.SeatReserved:
						report.Seats++
						if err := u.customers.MarkAssigned(ctx, repository.NoTX, customerID); err != nil {
							u.log.Warn().Err(err).Str("customer_id", customerID).Msg("mark assigned failed")
						}
					case repository.SeatSlotFull:
						// quote-time validation and this write are separated
						// by the payment round trip; a concurrent checkout
						// can exhaust the slot in between
						report.Skipped = append(report.Skipped, SkippedSeat{
							ProductID:  productID,
							LocationID: v.LocationID,
							At:         at,
							CustomerID: customerID,
						})
						u.log.Warn().
							Str("transaction_id", t.ID).
							Str("product_id", productID).
							Str("customer_id", customerID).
							Time("slot", at).
							Msg("slot exhausted at allocation time, seat skipped")
					case repository.SeatDuplicate:
						u.log.Debug().Str("customer_id", customerID).Str("slot_id", slotID).Msg("customer already seated")
					}
				}
			}
		}
	}
	return nil
}

func (u *allocationUC) ensureSchedule(ctx context.Context, orgID, productID string) (*model.Schedule, error) {
	sched, err := u.schedules.FindByOrgAndProduct(ctx, repository.NoTX, orgID, productID)
	if err == nil {
		return sched, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	sched = &model.Schedule{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		ProductID: productID,
		CreatedAt: u.now(),
	}
	if err := u.schedules.Save(ctx, repository.NoTX, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (u *allocationUC) recordCasual(ctx context.Context, t *model.Transaction, l model.CasualLine, report *AllocationReport) error {
	now := u.now()
	for _, customerID := range l.Tier.CustomerIDs {
		a, err := model.NewCasualAdmission(uuid.NewString(), t.OrgID, t.LocationID, customerID, t.ID, l.ProductID, l.Amount, l.Unit, now)
		if err != nil {
			return err
		}
		if err := u.admissions.Save(ctx, repository.NoTX, a); err != nil {
			return err
		}
		report.Admissions++
	}
	return nil
}

func (u *allocationUC) recordGeneral(ctx context.Context, t *model.Transaction, l model.GeneralLine, report *AllocationReport) error {
	now := u.now()
	for _, tier := range l.Tiers {
		for _, customerID := range tier.CustomerIDs {
			a, err := model.NewGeneralAdmission(uuid.NewString(), t.OrgID, t.LocationID, customerID, t.ID, l.ProductID, now)
			if err != nil {
				return err
			}
			if err := u.admissions.Save(ctx, repository.NoTX, a); err != nil {
				return err
			}
			report.Admissions++
		}
	}
	return nil
}
