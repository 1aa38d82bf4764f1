package adapter

import (
	"context"
	"time"
)

type CaptureMethod string

const (
	CaptureMethodAutomatic CaptureMethod = "automatic"
	CaptureMethodManual    CaptureMethod = "manual"
)

// PaymentIntent is the provider-agnostic view of a payment authorization.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string // requires_capture | succeeded | canceled | ...
}

// Subscription mirrors the external recurring-billing object the membership
// manager reconciles against.
type Subscription struct {
	ID                 string
	Status             string
	BillingCycleAnchor time.Time
	CurrentPeriodEnd   time.Time
	PauseCollection    bool
}

// SubscriptionUpdate carries the mutable fields; nil means "no change".
type SubscriptionUpdate struct {
	BillingCycleAnchor *time.Time
	PauseCollection    *bool
}

// Credit is a credit note / balance adjustment issued to a customer.
type Credit struct {
	ID          string
	AmountMinor int64
}

// BillingProvider is the hex port for the external payment/subscription
// service. Amounts cross this boundary in integer minor units only.
type BillingProvider interface {
	Name() string

	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, captureMethod CaptureMethod) (PaymentIntent, error)
	CapturePaymentIntent(ctx context.Context, id string) (PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, id string) (PaymentIntent, error)
	// RetrievePaymentIntent is used by the reconciler to settle stale pending
	// transactions after a missed webhook or a crash mid-capture.
	RetrievePaymentIntent(ctx context.Context, id string) (PaymentIntent, error)

	RetrieveSubscription(ctx context.Context, id string) (Subscription, error)
	UpdateSubscription(ctx context.Context, id string, upd SubscriptionUpdate) (Subscription, error)
	CancelSubscription(ctx context.Context, id string) (Subscription, error)

	CreateCreditNote(ctx context.Context, customerID string, amountMinor int64) (Credit, error)
}
