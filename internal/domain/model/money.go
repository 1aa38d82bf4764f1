package model

import "math"

// Monetary amounts carry full float precision through intermediate
// calculations; only final Totals fields and amounts handed to the billing
// provider are rounded.

// RoundCents rounds a monetary value to two decimals, half away from zero.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinorUnits converts a monetary value to integer minor units (cents) using
// round-half-up, as required by the billing provider.
func MinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Totals is the aggregated result of pricing a cart. All fields are
// non-negative and rounded to cents.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	Tax            float64
	Total          float64
}

func (t Totals) IsZero() bool {
	return t.Subtotal == 0 && t.DiscountAmount == 0 && t.Tax == 0 && t.Total == 0
}
