package model

import (
	"time"

	"gym-studio-pos/internal/domain"
)

type ProductKind string

const (
	ProductKindShop       ProductKind = "shop"
	ProductKindClass      ProductKind = "class"
	ProductKindCourse     ProductKind = "course"
	ProductKindGeneral    ProductKind = "general"
	ProductKindCasual     ProductKind = "casual"
	ProductKindMembership ProductKind = "membership"
	ProductKindPrepaid    ProductKind = "prepaid"
)

// Product is the catalog entry cart lines reference. Capacity applies to
// class/course products only; Taxable is a binary flag (no partial-tax lines).
type Product struct {
	ID        string
	OrgID     string
	Name      string
	Kind      ProductKind
	UnitPrice float64
	Capacity  int
	Taxable   bool
	CreatedAt time.Time
}

// NewProduct validates and constructs a catalog product.
func NewProduct(id, orgID, name string, kind ProductKind, unitPrice float64, capacity int, taxable bool) (*Product, error) {
	if id == "" || orgID == "" || name == "" || unitPrice < 0 || capacity < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Product{
		ID:        id,
		OrgID:     orgID,
		Name:      name,
		Kind:      kind,
		UnitPrice: unitPrice,
		Capacity:  capacity,
		Taxable:   taxable,
		CreatedAt: time.Now(),
	}, nil
}

// Discount is either a percentage (Percent=true, Value in [0,100] after
// clamping) or a fixed amount. Expired discounts are ignored by the pricer.
type Discount struct {
	ID      string
	Name    string
	Percent bool
	Value   float64
	Expiry  *time.Time
}

// Expired reports whether the discount must be excluded from calculation.
func (d Discount) Expired(now time.Time) bool {
	return d.Expiry != nil && d.Expiry.Before(now)
}

// OrgSettings carries the per-tenant knobs the core depends on.
type OrgSettings struct {
	OrgID                string
	Currency             string
	TaxRate              float64 // fraction, e.g. 0.10
	AnnualSuspensionDays int     // cap on membership pause days per rolling year
	ProviderAccountID    string
}
