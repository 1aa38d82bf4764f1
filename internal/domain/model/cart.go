package model

import (
	"time"

	"gym-studio-pos/internal/domain"
)

type LineKind string

const (
	LineKindShop       LineKind = "shop"
	LineKindClass      LineKind = "class"
	LineKindCourse     LineKind = "course"
	LineKindGeneral    LineKind = "general"
	LineKindCasual     LineKind = "casual"
	LineKindMembership LineKind = "membership"
	LineKindPrepaid    LineKind = "prepaid"
)

// CartLine is the closed set of line variants a cart may contain. Each variant
// carries only the fields relevant to its kind; the pricer switches
// exhaustively on the concrete type.
type CartLine interface {
	Kind() LineKind
	Product() string
	// Discounts returns the line-level discounts attached to this line.
	Discounts() []Discount
}

// PriceTier is one price row of a class/course/general/casual line: a named
// value charged Qty times, with zero or more customers assigned to it.
type PriceTier struct {
	Name        string
	Value       float64
	Qty         int
	CustomerIDs []string
}

// Variation selects schedule slots for a class/course line and prices them
// through its tiers.
type Variation struct {
	LocationID string
	SlotTimes  []time.Time
	Tiers      []PriceTier
}

type DurationUnit string

const (
	DurationUnitMinute DurationUnit = "minute"
	DurationUnitHour   DurationUnit = "hour"
	DurationUnitDay    DurationUnit = "day"
)

// Duration converts the selected amount+unit into a time.Duration.
func (u DurationUnit) Duration(amount int) time.Duration {
	switch u {
	case DurationUnitMinute:
		return time.Duration(amount) * time.Minute
	case DurationUnitHour:
		return time.Duration(amount) * time.Hour
	case DurationUnitDay:
		return time.Duration(amount) * 24 * time.Hour
	default:
		return 0
	}
}

type ShopLine struct {
	ProductID     string
	UnitPrice     float64
	Qty           int
	Taxable       bool
	LineDiscounts []Discount
}

func (l ShopLine) Kind() LineKind        { return LineKindShop }
func (l ShopLine) Product() string       { return l.ProductID }
func (l ShopLine) Discounts() []Discount { return l.LineDiscounts }

type ClassLine struct {
	ProductID     string
	Variations    []Variation
	Taxable       bool
	LineDiscounts []Discount
}

func (l ClassLine) Kind() LineKind        { return LineKindClass }
func (l ClassLine) Product() string       { return l.ProductID }
func (l ClassLine) Discounts() []Discount { return l.LineDiscounts }

// CourseLine shares the class shape but books every slot of a multi-session
// course at once.
type CourseLine struct {
	ProductID     string
	Variations    []Variation
	Taxable       bool
	LineDiscounts []Discount
}

func (l CourseLine) Kind() LineKind        { return LineKindCourse }
func (l CourseLine) Product() string       { return l.ProductID }
func (l CourseLine) Discounts() []Discount { return l.LineDiscounts }

type GeneralLine struct {
	ProductID     string
	Tiers         []PriceTier
	Taxable       bool
	LineDiscounts []Discount
}

func (l GeneralLine) Kind() LineKind        { return LineKindGeneral }
func (l GeneralLine) Product() string       { return l.ProductID }
func (l GeneralLine) Discounts() []Discount { return l.LineDiscounts }

type CasualLine struct {
	ProductID     string
	Amount        int
	Unit          DurationUnit
	Tier          PriceTier
	Taxable       bool
	LineDiscounts []Discount
}

func (l CasualLine) Kind() LineKind        { return LineKindCasual }
func (l CasualLine) Product() string       { return l.ProductID }
func (l CasualLine) Discounts() []Discount { return l.LineDiscounts }

type MembershipLine struct {
	ProductID     string
	Amount        float64
	Unit          BillingUnit
	CustomerID    string
	Taxable       bool
	LineDiscounts []Discount
}

func (l MembershipLine) Kind() LineKind        { return LineKindMembership }
func (l MembershipLine) Product() string       { return l.ProductID }
func (l MembershipLine) Discounts() []Discount { return l.LineDiscounts }

type PrepaidLine struct {
	ProductID     string
	Price         float64
	TotalPasses   int
	CustomerID    string
	Taxable       bool
	LineDiscounts []Discount
}

func (l PrepaidLine) Kind() LineKind        { return LineKindPrepaid }
func (l PrepaidLine) Product() string       { return l.ProductID }
func (l PrepaidLine) Discounts() []Discount { return l.LineDiscounts }

// Cart is the ephemeral, client-submitted checkout payload. TaxRate is the
// org's configured rate resolved by the caller; Discounts apply cart-wide.
type Cart struct {
	OrgID      string
	LocationID string
	Lines      []CartLine
	Discounts  []Discount
	TaxRate    float64
}

// Validate checks structural well-formedness (not capacity; that needs the
// schedule and is the pricer's job). Negative quantities, prices and discount
// values are rejected so a malformed payload cannot produce a negative total.
func (c *Cart) Validate() error {
	if c.OrgID == "" {
		return domain.ErrInvalidArgument
	}
	if err := validateDiscounts(c.Discounts); err != nil {
		return err
	}
	for _, line := range c.Lines {
		if line.Product() == "" {
			return domain.ErrInvalidArgument
		}
		if err := validateDiscounts(line.Discounts()); err != nil {
			return err
		}
		if err := validateLine(line); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(line CartLine) error {
	switch l := line.(type) {
	case ShopLine:
		if l.UnitPrice < 0 || l.Qty < 0 {
			return domain.ErrInvalidArgument
		}
	case ClassLine:
		return validateVariationTiers(l.Variations)
	case CourseLine:
		return validateVariationTiers(l.Variations)
	case GeneralLine:
		return validateTiers(l.Tiers)
	case CasualLine:
		if l.Amount < 0 {
			return domain.ErrInvalidArgument
		}
		return validateTier(l.Tier)
	case MembershipLine:
		if l.Amount < 0 {
			return domain.ErrInvalidArgument
		}
	case PrepaidLine:
		if l.Price < 0 || l.TotalPasses < 0 {
			return domain.ErrInvalidArgument
		}
	}
	return nil
}

func validateVariationTiers(vars []Variation) error {
	for _, v := range vars {
		if err := validateTiers(v.Tiers); err != nil {
			return err
		}
	}
	return nil
}

func validateTiers(tiers []PriceTier) error {
	for _, t := range tiers {
		if err := validateTier(t); err != nil {
			return err
		}
	}
	return nil
}

func validateTier(t PriceTier) error {
	if t.Value < 0 || t.Qty < 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}

func validateDiscounts(ds []Discount) error {
	for _, d := range ds {
		if d.Value < 0 {
			return domain.ErrInvalidArgument
		}
	}
	return nil
}
