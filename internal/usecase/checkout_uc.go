// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/adapter"
	"gym-studio-pos/internal/domain/ports/repository"
)

// Actor is the authenticated employee context a checkout runs under.
type Actor struct {
	OrgID      string
	LocationID string
	EmployeeID string
	CustomerID *string
}

// ProviderEvent is the minimal webhook payload the checkout flow consumes.
type ProviderEvent struct {
	Type     string
	IntentID string
	Status   string
}

// Locker serializes fan-out across processes (webhook vs. capture vs.
// reconciler racing on the same transaction).
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// CheckoutUseCase drives a cart from quote to captured payment to fan-out.
type CheckoutUseCase interface {
	// Begin validates and prices the cart, opens a payment intent with the
	// provider and persists the pending transaction. Returns the transaction
	// and the provider client secret for the terminal/browser to confirm.
	Begin(ctx context.Context, actor Actor, cart *model.Cart, paymentMethod string) (*model.Transaction, string, error)
	// Capture settles an authorized payment and runs fan-out exactly once.
	Capture(ctx context.Context, transactionID string) (*model.Transaction, error)
	// Cancel voids the payment intent before capture.
	Cancel(ctx context.Context, transactionID string) (*model.Transaction, error)
	// HandleProviderEvent applies a provider webhook. Idempotent: replays and
	// races with Capture converge on the same final state.
	HandleProviderEvent(ctx context.Context, ev ProviderEvent) error
	// Reconcile re-reads the provider intent for a stale pending transaction
	// and settles it. Called by the payment reconciler worker.
	Reconcile(ctx context.Context, transactionID string) error
}

var _ CheckoutUseCase = (*checkoutUC)(nil)

type checkoutUC struct {
	pricing      PricingUseCase
	transactions repository.TransactionRepository
	memberships  MembershipUseCase
	passes       PrepaidUseCase
	allocation   AllocationUseCase
	orgs         repository.OrgSettingsRepository
	billing      adapter.BillingProvider
	locker       Locker
	log          *zerolog.Logger
	now          func() time.Time
	entropy      *ulid.MonotonicEntropy
}

func NewCheckoutUseCase(
	pricing PricingUseCase,
	transactions repository.TransactionRepository,
	memberships MembershipUseCase,
	passes PrepaidUseCase,
	allocation AllocationUseCase,
	orgs repository.OrgSettingsRepository,
	billing adapter.BillingProvider,
	locker Locker,
	logger *zerolog.Logger,
	now func() time.Time,
) *checkoutUC {
	if now == nil {
		now = time.Now
	}
	return &checkoutUC{
		pricing:      pricing,
		transactions: transactions,
		memberships:  memberships,
		passes:       passes,
		allocation:   allocation,
		orgs:         orgs,
		billing:      billing,
		locker:       locker,
		log:          logger,
		now:          now,
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (u *checkoutUC) newTransactionID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), u.entropy).String()
}

func (u *checkoutUC) Begin(ctx context.Context, actor Actor, cart *model.Cart, paymentMethod string) (*model.Transaction, string, error) {
	if err := u.pricing.Validate(ctx, cart); err != nil {
		return nil, "", err
	}
	totals, err := u.pricing.Quote(ctx, cart)
	if err != nil {
		return nil, "", err
	}
	amountMinor := model.MinorUnits(totals.Total)
	if amountMinor <= 0 {
		return nil, "", fmt.Errorf("cart total %.2f: %w", totals.Total, domain.ErrInvalidArgument)
	}

	settings, err := u.orgs.Get(ctx, repository.NoTX, actor.OrgID)
	if err != nil {
		return nil, "", err
	}

	// payment authorization failures are fatal: no transaction without an intent
	intent, err := u.billing.CreatePaymentIntent(ctx, amountMinor, settings.Currency, adapter.CaptureMethodManual)
	if err != nil {
		return nil, "", fmt.Errorf("create payment intent: %w: %v", domain.ErrExternalProvider, err)
	}

	now := u.now()
	t, err := model.NewTransaction(u.newTransactionID(now), actor.OrgID, actor.LocationID, actor.EmployeeID, actor.CustomerID, *cart, totals, paymentMethod, intent.ID, now)
	if err != nil {
		return nil, "", err
	}
	if intent.Status == "requires_capture" {
		t.Status = model.TransactionStatusRequiresCapture
	}
	if err := u.transactions.Save(ctx, repository.NoTX, t); err != nil {
		return nil, "", err
	}
	return t, intent.ClientSecret, nil
}

func (u *checkoutUC) Capture(ctx context.Context, transactionID string) (*model.Transaction, error) {
	t, err := u.transactions.FindByID(ctx, repository.NoTX, transactionID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TransactionStatusSucceeded {
		return t, nil // already captured; fan-out already ran or is running
	}
	if t.Finalized() {
		return nil, domain.ErrInvalidStateTransition
	}

	if _, err := u.billing.CapturePaymentIntent(ctx, t.ProviderIntentID); err != nil {
		// transaction stays pending; the reconciler will retry
		return nil, fmt.Errorf("capture payment intent: %w: %v", domain.ErrExternalProvider, err)
	}
	return u.finalizeSucceeded(ctx, t)
}

func (u *checkoutUC) Cancel(ctx context.Context, transactionID string) (*model.Transaction, error) {
	t, err := u.transactions.FindByID(ctx, repository.NoTX, transactionID)
	if err != nil {
		return nil, err
	}
	if t.Finalized() {
		return nil, domain.ErrInvalidStateTransition
	}
	if _, err := u.billing.CancelPaymentIntent(ctx, t.ProviderIntentID); err != nil {
		return nil, fmt.Errorf("cancel payment intent: %w: %v", domain.ErrExternalProvider, err)
	}
	if err := u.transactions.UpdateStatus(ctx, repository.NoTX, t.ID, model.TransactionStatusCancelled); err != nil {
		return nil, err
	}
	t.Status = model.TransactionStatusCancelled
	return t, nil
}

func (u *checkoutUC) HandleProviderEvent(ctx context.Context, ev ProviderEvent) error {
	t, err := u.transactions.FindByProviderIntentID(ctx, repository.NoTX, ev.IntentID)
	if err != nil {
		return err
	}
	return u.applyIntentStatus(ctx, t, ev.Status)
}

func (u *checkoutUC) Reconcile(ctx context.Context, transactionID string) error {
	t, err := u.transactions.FindByID(ctx, repository.NoTX, transactionID)
	if err != nil {
		return err
	}
	if t.Finalized() {
		return nil
	}
	intent, err := u.billing.RetrievePaymentIntent(ctx, t.ProviderIntentID)
	if err != nil {
		return fmt.Errorf("retrieve payment intent: %w: %v", domain.ErrExternalProvider, err)
	}
	return u.applyIntentStatus(ctx, t, intent.Status)
}

func (u *checkoutUC) applyIntentStatus(ctx context.Context, t *model.Transaction, status string) error {
	switch status {
	case "succeeded":
		if t.Status == model.TransactionStatusSucceeded {
			return nil // replayed webhook
		}
		_, err := u.finalizeSucceeded(ctx, t)
		return err
	case "canceled", "cancelled":
		if t.Finalized() {
			return nil
		}
		return u.transactions.UpdateStatus(ctx, repository.NoTX, t.ID, model.TransactionStatusCancelled)
	case "requires_capture":
		if t.Status == model.TransactionStatusPending {
			return u.transactions.UpdateStatus(ctx, repository.NoTX, t.ID, model.TransactionStatusRequiresCapture)
		}
		return nil
	default:
		return nil
	}
}

// finalizeSucceeded flips the transaction to succeeded and runs fan-out.
// Exactly-once: a redis lock keeps concurrent finalizers (capture call,
// webhook, reconciler) from interleaving, but the guarded allocated_at update
// is the authoritative at-most-once gate. A finalizer that cannot take the
// lock still proceeds to the gate; otherwise a redis outage would leave the
// fan-out unrun with no retry, since the transaction is already succeeded.
func (u *checkoutUC) finalizeSucceeded(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	if err := u.transactions.UpdateStatus(ctx, repository.NoTX, t.ID, model.TransactionStatusSucceeded); err != nil {
		return nil, err
	}
	t.Status = model.TransactionStatusSucceeded

	lockKey := "checkout:fanout:" + t.ID
	token, err := u.locker.TryLock(ctx, lockKey, 30*time.Second)
	if err != nil {
		u.log.Warn().Err(err).Str("transaction_id", t.ID).Msg("fan-out lock unavailable")
	} else {
		defer func() { _ = u.locker.Unlock(ctx, lockKey, token) }()
	}

	won, err := u.transactions.MarkAllocated(ctx, repository.NoTX, t.ID, u.now())
	if err != nil {
		return nil, err
	}
	if !won {
		return t, nil
	}
	u.fanOut(ctx, t)
	return t, nil
}

// fanOut runs the post-payment side effects. The customer has been charged;
// failures here are logged for out-of-band reconciliation, never rolled back.
func (u *checkoutUC) fanOut(ctx context.Context, t *model.Transaction) {
	report, err := u.allocation.Allocate(ctx, t)
	if err != nil {
		u.log.Error().Err(err).Str("transaction_id", t.ID).Msg("allocation fan-out failed")
	}
	if report != nil && len(report.Skipped) > 0 {
		u.log.Warn().Str("transaction_id", t.ID).Int("skipped", len(report.Skipped)).Msg("seats skipped during allocation")
	}

	for _, line := range t.Cart.Lines {
		switch l := line.(type) {
		case model.MembershipLine:
			if _, err := u.memberships.CreateFromLine(ctx, t.OrgID, t.LocationID, l); err != nil {
				u.log.Error().Err(err).Str("transaction_id", t.ID).Str("product_id", l.ProductID).Msg("membership creation failed")
			}
		case model.PrepaidLine:
			if _, err := u.passes.Issue(ctx, t.OrgID, l.CustomerID, l.TotalPasses); err != nil {
				u.log.Error().Err(err).Str("transaction_id", t.ID).Str("product_id", l.ProductID).Msg("prepaid pass issue failed")
			}
		}
	}
}
