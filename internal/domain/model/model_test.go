//go:build !integration

package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func TestMembershipSuspensionWindow(t *testing.T) {
	t.Run("only suspensions inside the rolling year count", func(t *testing.T) {
		m := &model.Membership{
			Suspensions: []model.Suspension{
				{PausedAt: now.AddDate(0, -3, 0), Days: 10},
				{PausedAt: now.AddDate(-1, 0, -1), Days: 20}, // just outside
			},
		}
		if got := m.SuspensionDaysUsed(now); got != 10 {
			t.Errorf("expected 10 used days, got %d", got)
		}
	})

	t.Run("the open suspension and a scheduled pause are charged", func(t *testing.T) {
		m := &model.Membership{
			CurrentSuspension: &model.Suspension{PausedAt: now.AddDate(0, 0, -2), Days: 7},
			ScheduledPause:    &model.ScheduledPause{StartAt: now.AddDate(0, 1, 0), Days: 5},
		}
		if got := m.SuspensionDaysUsed(now); got != 12 {
			t.Errorf("expected 12 used days, got %d", got)
		}
	})

	t.Run("remaining days never go negative", func(t *testing.T) {
		m := &model.Membership{
			Suspensions: []model.Suspension{{PausedAt: now.AddDate(0, -1, 0), Days: 45}},
		}
		if got := m.RemainingSuspensionDays(30, now); got != 0 {
			t.Errorf("expected 0 remaining, got %d", got)
		}
	})
}

func TestBillingUnitAdvance(t *testing.T) {
	cases := []struct {
		unit model.BillingUnit
		want time.Time
	}{
		{model.BillingUnitWeek, now.AddDate(0, 0, 7)},
		{model.BillingUnitMonth, now.AddDate(0, 1, 0)},
		{model.BillingUnitYear, now.AddDate(1, 0, 0)},
	}
	for _, c := range cases {
		if got := c.unit.Advance(now); !got.Equal(c.want) {
			t.Errorf("%s: expected %v, got %v", c.unit, c.want, got)
		}
	}
}

func TestDurationUnit(t *testing.T) {
	if got := model.DurationUnitDay.Duration(2); got != 48*time.Hour {
		t.Errorf("expected 48h, got %v", got)
	}
	if got := model.DurationUnitHour.Duration(3); got != 3*time.Hour {
		t.Errorf("expected 3h, got %v", got)
	}
	if got := model.DurationUnit("fortnight").Duration(1); got != 0 {
		t.Errorf("unknown unit must yield 0, got %v", got)
	}
}

func TestDiscountExpired(t *testing.T) {
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	if !(model.Discount{Expiry: &past}).Expired(now) {
		t.Error("a past expiry must be expired")
	}
	if (model.Discount{Expiry: &future}).Expired(now) {
		t.Error("a future expiry must not be expired")
	}
	if (model.Discount{}).Expired(now) {
		t.Error("no expiry never expires")
	}
}

func TestPrepaidPassRedeem(t *testing.T) {
	t.Run("exact depletion flips the status", func(t *testing.T) {
		p, err := model.NewPrepaidPass("p-1", "org-1", "AAAA-BBBB", "cust-1", 2, now)
		if err != nil {
			t.Fatalf("new pass: %v", err)
		}
		if err := p.Redeem(2, "cust-1", "t-1", now); err != nil {
			t.Fatalf("redeem: %v", err)
		}
		if p.RemainingPasses != 0 || p.Status != model.PrepaidPassStatusDepleted {
			t.Errorf("expected a depleted pass, got %d remaining, status %s", p.RemainingPasses, p.Status)
		}
	})

	t.Run("a redemption below zero is rejected without mutation", func(t *testing.T) {
		p, _ := model.NewPrepaidPass("p-1", "org-1", "AAAA-BBBB", "cust-1", 2, now)
		err := p.Redeem(3, "cust-1", "t-1", now)
		if !errors.Is(err, domain.ErrPassDepleted) {
			t.Fatalf("expected ErrPassDepleted, got %v", err)
		}
		if p.RemainingPasses != 2 || len(p.Redemptions) != 0 || p.Status != model.PrepaidPassStatusActive {
			t.Errorf("pass mutated by a rejected redemption: %+v", p)
		}
	})
}

func TestTransactionFinalized(t *testing.T) {
	finalized := map[model.TransactionStatus]bool{
		model.TransactionStatusPending:         false,
		model.TransactionStatusRequiresCapture: false,
		model.TransactionStatusSucceeded:       true,
		model.TransactionStatusCancelled:       true,
		model.TransactionStatusFailed:          true,
	}
	for status, want := range finalized {
		tr := &model.Transaction{Status: status}
		if got := tr.Finalized(); got != want {
			t.Errorf("%s: expected Finalized=%v, got %v", status, want, got)
		}
	}
}

func TestCartJSONRoundTrip(t *testing.T) {
	expiry := now.AddDate(0, 1, 0)
	cart := model.Cart{
		OrgID:      "org-1",
		LocationID: "loc-1",
		TaxRate:    0.10,
		Discounts:  []model.Discount{{ID: "d-1", Name: "spring", Percent: true, Value: 10, Expiry: &expiry}},
		Lines: []model.CartLine{
			model.ShopLine{ProductID: "p-shop", UnitPrice: 4.5, Qty: 2, Taxable: true},
			model.ClassLine{ProductID: "p-class", Taxable: true, Variations: []model.Variation{{
				LocationID: "loc-1",
				SlotTimes:  []time.Time{now.Add(48 * time.Hour)},
				Tiers:      []model.PriceTier{{Name: "standard", Value: 25, Qty: 1, CustomerIDs: []string{"c-1"}}},
			}}},
			model.CasualLine{ProductID: "p-day", Amount: 1, Unit: model.DurationUnitDay,
				Tier: model.PriceTier{Name: "day", Value: 15, Qty: 1, CustomerIDs: []string{"c-2"}}},
			model.MembershipLine{ProductID: "p-mem", Amount: 79, Unit: model.BillingUnitMonth, CustomerID: "c-1"},
			model.PrepaidLine{ProductID: "p-pass", Price: 120, TotalPasses: 10, CustomerID: "c-1"},
		},
	}

	b, err := json.Marshal(cart)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got model.Cart
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(got.Lines) != len(cart.Lines) {
		t.Fatalf("expected %d lines, got %d", len(cart.Lines), len(got.Lines))
	}
	for i, line := range got.Lines {
		if line.Kind() != cart.Lines[i].Kind() {
			t.Errorf("line %d: expected kind %s, got %s", i, cart.Lines[i].Kind(), line.Kind())
		}
	}
	shop, ok := got.Lines[0].(model.ShopLine)
	if !ok || shop.UnitPrice != 4.5 || shop.Qty != 2 {
		t.Errorf("shop line lost fields: %+v", got.Lines[0])
	}
	class, ok := got.Lines[1].(model.ClassLine)
	if !ok || len(class.Variations) != 1 || len(class.Variations[0].Tiers) != 1 {
		t.Fatalf("class line lost structure: %+v", got.Lines[1])
	}
	if !class.Variations[0].SlotTimes[0].Equal(now.Add(48 * time.Hour)) {
		t.Errorf("slot time drifted: %v", class.Variations[0].SlotTimes[0])
	}
	mem, ok := got.Lines[3].(model.MembershipLine)
	if !ok || mem.Unit != model.BillingUnitMonth || mem.CustomerID != "c-1" {
		t.Errorf("membership line lost fields: %+v", got.Lines[3])
	}
	if len(got.Discounts) != 1 || got.Discounts[0].Value != 10 || !got.Discounts[0].Percent {
		t.Errorf("cart discounts lost: %+v", got.Discounts)
	}
}

func TestCartUnmarshalUnknownKind(t *testing.T) {
	raw := `{"org_id":"org-1","lines":[{"kind":"voucher","data":{}}],"tax_rate":0}`
	var c model.Cart
	if err := json.Unmarshal([]byte(raw), &c); err == nil {
		t.Fatal("expected an error for an unknown line kind")
	}
}

func TestCartValidate(t *testing.T) {
	valid := func() *model.Cart {
		return &model.Cart{
			OrgID: "org-1",
			Lines: []model.CartLine{model.ShopLine{ProductID: "prod-1", UnitPrice: 10, Qty: 2}},
		}
	}

	t.Run("accepts a well-formed cart", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
	})

	t.Run("rejects a missing org", func(t *testing.T) {
		c := valid()
		c.OrgID = ""
		if err := c.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects negative quantities and prices", func(t *testing.T) {
		cases := map[string]model.CartLine{
			"shop negative qty":         model.ShopLine{ProductID: "p", UnitPrice: 10, Qty: -3},
			"shop negative price":       model.ShopLine{ProductID: "p", UnitPrice: -10, Qty: 3},
			"class negative tier":       model.ClassLine{ProductID: "p", Variations: []model.Variation{{LocationID: "loc-1", Tiers: []model.PriceTier{{Name: "adult", Value: -20, Qty: 1}}}}},
			"general negative tier qty": model.GeneralLine{ProductID: "p", Tiers: []model.PriceTier{{Name: "adult", Value: 20, Qty: -1}}},
			"casual negative amount":    model.CasualLine{ProductID: "p", Amount: -2, Unit: model.DurationUnitHour, Tier: model.PriceTier{Value: 15, Qty: 1}},
			"membership negative":       model.MembershipLine{ProductID: "p", Amount: -79, Unit: model.BillingUnitMonth},
			"prepaid negative price":    model.PrepaidLine{ProductID: "p", Price: -120, TotalPasses: 10},
			"prepaid negative passes":   model.PrepaidLine{ProductID: "p", Price: 120, TotalPasses: -10},
		}
		for name, line := range cases {
			c := &model.Cart{OrgID: "org-1", Lines: []model.CartLine{line}}
			if err := c.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("%s: expected ErrInvalidArgument, got %v", name, err)
			}
		}
	})

	t.Run("rejects negative discount values", func(t *testing.T) {
		c := valid()
		c.Discounts = []model.Discount{{Name: "bogus", Value: -5}}
		if err := c.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("cart discount: expected ErrInvalidArgument, got %v", err)
		}

		c = valid()
		c.Lines = []model.CartLine{model.ShopLine{
			ProductID: "p", UnitPrice: 10, Qty: 1,
			LineDiscounts: []model.Discount{{Name: "bogus", Percent: true, Value: -10}},
		}}
		if err := c.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("line discount: expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestMoneyRounding(t *testing.T) {
	if got := model.RoundCents(74.248); got != 74.25 {
		t.Errorf("expected 74.25, got %v", got)
	}
	if got := model.RoundCents(0.125); got != 0.13 {
		t.Errorf("expected 0.13, got %v", got)
	}
	if got := model.RoundCents(-0.125); got != -0.13 {
		t.Errorf("expected -0.13 (half away from zero), got %v", got)
	}
	if got := model.MinorUnits(79.999); got != 8000 {
		t.Errorf("expected 8000, got %d", got)
	}
}
