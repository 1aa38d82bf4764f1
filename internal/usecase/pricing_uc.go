// File: internal/usecase/pricing_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// PricingUseCase maps a cart to totals and validates structural constraints
// before payment authorization.
type PricingUseCase interface {
	// Quote computes totals for the cart. Deterministic and side-effect-free:
	// quoting the same cart twice yields identical totals.
	Quote(ctx context.Context, cart *model.Cart) (model.Totals, error)
	// Validate checks capacity and customer-assignment constraints against
	// the catalog and schedule.
	Validate(ctx context.Context, cart *model.Cart) error
}

var _ PricingUseCase = (*pricingUC)(nil)

type pricingUC struct {
	schedules repository.ScheduleRepository
	log       *zerolog.Logger
	now       func() time.Time
}

// NewPricingUseCase constructs the cart pricing engine. now may be nil
// (defaults to time.Now); tests inject a fixed clock.
func NewPricingUseCase(schedules repository.ScheduleRepository, logger *zerolog.Logger, now func() time.Time) *pricingUC {
	if now == nil {
		now = time.Now
	}
	return &pricingUC{schedules: schedules, log: logger, now: now}
}

func (u *pricingUC) Quote(ctx context.Context, cart *model.Cart) (model.Totals, error) {
	if err := cart.Validate(); err != nil {
		return model.Totals{}, err
	}
	return CalcTotals(cart, u.now())
}

// CalcTotals is the pure pricing function. All intermediate amounts carry
// full floating precision; only the returned fields are rounded to cents.
// Expired discounts are silently ignored. Percent discounts are clamped to
// [0,100] and applied before tax; tax applies to the post-discount amount of
// taxable lines only.
func CalcTotals(cart *model.Cart, now time.Time) (model.Totals, error) {
	var subtotal, discount, taxable float64

	for _, line := range cart.Lines {
		gross, err := lineAmount(line)
		if err != nil {
			return model.Totals{}, err
		}
		net := gross
		for _, d := range line.Discounts() {
			if d.Expired(now) {
				continue
			}
			net -= discountOff(d, net)
		}
		subtotal += gross
		discount += gross - net
		if lineTaxable(line) {
			taxable += net
		}
	}

	remaining := subtotal - discount
	for _, d := range cart.Discounts {
		if d.Expired(now) {
			continue
		}
		off := discountOff(d, remaining)
		if remaining > 0 {
			// cart-wide discounts reduce the taxable base proportionally
			taxable -= taxable * off / remaining
		}
		remaining -= off
		discount += off
	}

	tax := taxable * cart.TaxRate
	if tax < 0 {
		tax = 0
	}

	t := model.Totals{
		Subtotal:       model.RoundCents(subtotal),
		DiscountAmount: model.RoundCents(discount),
		Tax:            model.RoundCents(tax),
	}
	t.Total = model.RoundCents(t.Subtotal - t.DiscountAmount + t.Tax)
	return t, nil
}

// discountOff returns the amount a single discount takes off base, never more
// than base itself.
func discountOff(d model.Discount, base float64) float64 {
	if base <= 0 {
		return 0
	}
	if d.Percent {
		pct := d.Value
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		return base * pct / 100
	}
	if d.Value <= 0 {
		return 0
	}
	if d.Value > base {
		return base
	}
	return d.Value
}

func lineAmount(line model.CartLine) (float64, error) {
	switch l := line.(type) {
	case model.ShopLine:
		return l.UnitPrice * float64(l.Qty), nil
	case model.ClassLine:
		return variationsAmount(l.Variations), nil
	case model.CourseLine:
		return variationsAmount(l.Variations), nil
	case model.GeneralLine:
		return tiersAmount(l.Tiers), nil
	case model.CasualLine:
		return l.Tier.Value * float64(l.Tier.Qty), nil
	case model.MembershipLine:
		return l.Amount, nil
	case model.PrepaidLine:
		return l.Price, nil
	default:
		return 0, fmt.Errorf("cart line kind %q: %w", line.Kind(), domain.ErrInvalidArgument)
	}
}

func lineTaxable(line model.CartLine) bool {
	switch l := line.(type) {
	case model.ShopLine:
		return l.Taxable
	case model.ClassLine:
		return l.Taxable
	case model.CourseLine:
		return l.Taxable
	case model.GeneralLine:
		return l.Taxable
	case model.CasualLine:
		return l.Taxable
	case model.MembershipLine:
		return l.Taxable
	case model.PrepaidLine:
		return l.Taxable
	default:
		return false
	}
}

func tiersAmount(tiers []model.PriceTier) float64 {
	var sum float64
	for _, t := range tiers {
		sum += t.Value * float64(t.Qty)
	}
	return sum
}

func variationsAmount(vars []model.Variation) float64 {
	var sum float64
	for _, v := range vars {
		sum += tiersAmount(v.Tiers)
	}
	return sum
}

// Validate rejects carts that would oversell a slot or leave a paid-for tier
// without enough assigned customers. The capacity check here and the write at
// allocation time are separated by the payment round trip; the allocation
// write re-checks capacity atomically (see AllocationUseCase).
func (u *pricingUC) Validate(ctx context.Context, cart *model.Cart) error {
	if err := cart.Validate(); err != nil {
		return err
	}
	for _, line := range cart.Lines {
		switch l := line.(type) {
		case model.ClassLine:
			if err := u.validateVariations(ctx, cart.OrgID, l.ProductID, l.Variations); err != nil {
				return err
			}
		case model.CourseLine:
			if err := u.validateVariations(ctx, cart.OrgID, l.ProductID, l.Variations); err != nil {
				return err
			}
		case model.GeneralLine:
			for _, t := range l.Tiers {
				if err := checkTierAssignment(l.ProductID, t); err != nil {
					return err
				}
			}
		case model.CasualLine:
			if err := checkTierAssignment(l.ProductID, l.Tier); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *pricingUC) validateVariations(ctx context.Context, orgID, productID string, vars []model.Variation) error {
	for _, v := range vars {
		assigned := 0
		for _, t := range v.Tiers {
			if err := checkTierAssignment(productID, t); err != nil {
				return err
			}
			assigned += len(t.CustomerIDs)
		}
		if assigned == 0 {
			continue
		}
		for _, at := range v.SlotTimes {
			available, err := u.schedules.SlotAvailability(ctx, repository.NoTX, orgID, productID, v.LocationID, at)
			if err != nil {
				return err
			}
			if assigned > available {
				return fmt.Errorf("product %s slot %s: %d assigned, %d available: %w",
					productID, at.Format(time.RFC3339), assigned, available, domain.ErrCapacityExceeded)
			}
		}
	}
	return nil
}

func checkTierAssignment(productID string, t model.PriceTier) error {
	if t.Qty > 0 && len(t.CustomerIDs) < t.Qty {
		return fmt.Errorf("product %s tier %q: qty %d, %d customers: %w",
			productID, t.Name, t.Qty, len(t.CustomerIDs), domain.ErrMissingCustomerAssignment)
	}
	return nil
}
