package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/ports/adapter"
)

var _ adapter.BillingProvider = (*NoopGateway)(nil)

// NoopGateway is an in-memory provider for local development and seeding.
// Intents authorize immediately and capture on demand.
type NoopGateway struct {
	mu      sync.Mutex
	intents map[string]adapter.PaymentIntent
}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{intents: make(map[string]adapter.PaymentIntent)}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, captureMethod adapter.CaptureMethod) (adapter.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status := "succeeded"
	if captureMethod == adapter.CaptureMethodManual {
		status = "requires_capture"
	}
	pi := adapter.PaymentIntent{
		ID:           "pi_" + uuid.NewString(),
		ClientSecret: "secret_" + uuid.NewString(),
		Status:       status,
	}
	g.intents[pi.ID] = pi
	return pi, nil
}

func (g *NoopGateway) CapturePaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	return g.setStatus(id, "succeeded")
}

func (g *NoopGateway) CancelPaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	return g.setStatus(id, "canceled")
}

func (g *NoopGateway) RetrievePaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.intents[id]
	if !ok {
		return adapter.PaymentIntent{}, domain.ErrNotFound
	}
	return pi, nil
}

func (g *NoopGateway) setStatus(id, status string) (adapter.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.intents[id]
	if !ok {
		return adapter.PaymentIntent{}, domain.ErrNotFound
	}
	pi.Status = status
	g.intents[id] = pi
	return pi, nil
}

func (g *NoopGateway) RetrieveSubscription(ctx context.Context, id string) (adapter.Subscription, error) {
	return adapter.Subscription{ID: id, Status: "active", CurrentPeriodEnd: time.Now().AddDate(0, 1, 0)}, nil
}

func (g *NoopGateway) UpdateSubscription(ctx context.Context, id string, upd adapter.SubscriptionUpdate) (adapter.Subscription, error) {
	sub := adapter.Subscription{ID: id, Status: "active"}
	if upd.BillingCycleAnchor != nil {
		sub.BillingCycleAnchor = *upd.BillingCycleAnchor
	}
	if upd.PauseCollection != nil {
		sub.PauseCollection = *upd.PauseCollection
	}
	return sub, nil
}

func (g *NoopGateway) CancelSubscription(ctx context.Context, id string) (adapter.Subscription, error) {
	return adapter.Subscription{ID: id, Status: "canceled"}, nil
}

func (g *NoopGateway) CreateCreditNote(ctx context.Context, customerID string, amountMinor int64) (adapter.Credit, error) {
	return adapter.Credit{ID: "cn_" + uuid.NewString(), AmountMinor: amountMinor}, nil
}
