// File: internal/infra/adapters/payment/stripe_gateway.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gym-studio-pos/internal/domain/ports/adapter"
)

var _ adapter.BillingProvider = (*StripeGateway)(nil)

// StripeGateway implements adapter.BillingProvider against the Stripe REST
// API (payment intents, subscriptions, credit notes). All amounts are integer
// minor units, matching the port contract.
type StripeGateway struct {
	secretKey string
	accountID string // optional connected account
	baseURL   string
	client    *http.Client
}

func NewStripeGateway(secretKey, accountID, baseURL string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key empty")
	}
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1"
	}
	return &StripeGateway{
		secretKey: secretKey,
		accountID: accountID,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) endpoint(path string) string {
	return g.baseURL + path
}

type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type stripeSubscription struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	BillingCycleAnchor int64  `json:"billing_cycle_anchor"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	PauseCollection    *struct {
		Behavior string `json:"behavior"`
	} `json:"pause_collection"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do posts form-encoded params (Stripe's wire format) and decodes into out.
func (g *StripeGateway) do(ctx context.Context, method, path string, params url.Values, out interface{}) error {
	var body *strings.Reader
	if params != nil {
		body = strings.NewReader(params.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, g.endpoint(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if g.accountID != "" {
		req.Header.Set("Stripe-Account", g.accountID)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var se stripeError
		if decErr := json.NewDecoder(resp.Body).Decode(&se); decErr == nil && se.Error.Message != "" {
			return fmt.Errorf("stripe %s: %s", se.Error.Code, se.Error.Message)
		}
		return fmt.Errorf("stripe http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, captureMethod adapter.CaptureMethod) (adapter.PaymentIntent, error) {
	params := url.Values{}
	params.Set("amount", strconv.FormatInt(amountMinor, 10))
	params.Set("currency", strings.ToLower(currency))
	params.Set("capture_method", string(captureMethod))
	var out stripeIntent
	if err := g.do(ctx, http.MethodPost, "/payment_intents", params, &out); err != nil {
		return adapter.PaymentIntent{}, err
	}
	return intentFromStripe(out), nil
}

func (g *StripeGateway) CapturePaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	var out stripeIntent
	if err := g.do(ctx, http.MethodPost, "/payment_intents/"+id+"/capture", nil, &out); err != nil {
		return adapter.PaymentIntent{}, err
	}
	return intentFromStripe(out), nil
}

func (g *StripeGateway) CancelPaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	var out stripeIntent
	if err := g.do(ctx, http.MethodPost, "/payment_intents/"+id+"/cancel", nil, &out); err != nil {
		return adapter.PaymentIntent{}, err
	}
	return intentFromStripe(out), nil
}

func (g *StripeGateway) RetrievePaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	var out stripeIntent
	if err := g.do(ctx, http.MethodGet, "/payment_intents/"+id, nil, &out); err != nil {
		return adapter.PaymentIntent{}, err
	}
	return intentFromStripe(out), nil
}

func (g *StripeGateway) RetrieveSubscription(ctx context.Context, id string) (adapter.Subscription, error) {
	var out stripeSubscription
	if err := g.do(ctx, http.MethodGet, "/subscriptions/"+id, nil, &out); err != nil {
		return adapter.Subscription{}, err
	}
	return subscriptionFromStripe(out), nil
}

func (g *StripeGateway) UpdateSubscription(ctx context.Context, id string, upd adapter.SubscriptionUpdate) (adapter.Subscription, error) {
	params := url.Values{}
	if upd.BillingCycleAnchor != nil {
		params.Set("billing_cycle_anchor", strconv.FormatInt(upd.BillingCycleAnchor.Unix(), 10))
		params.Set("proration_behavior", "none")
	}
	if upd.PauseCollection != nil {
		if *upd.PauseCollection {
			params.Set("pause_collection[behavior]", "void")
		} else {
			params.Set("pause_collection", "")
		}
	}
	var out stripeSubscription
	if err := g.do(ctx, http.MethodPost, "/subscriptions/"+id, params, &out); err != nil {
		return adapter.Subscription{}, err
	}
	return subscriptionFromStripe(out), nil
}

func (g *StripeGateway) CancelSubscription(ctx context.Context, id string) (adapter.Subscription, error) {
	var out stripeSubscription
	if err := g.do(ctx, http.MethodDelete, "/subscriptions/"+id, nil, &out); err != nil {
		return adapter.Subscription{}, err
	}
	return subscriptionFromStripe(out), nil
}

func (g *StripeGateway) CreateCreditNote(ctx context.Context, customerID string, amountMinor int64) (adapter.Credit, error) {
	params := url.Values{}
	params.Set("customer", customerID)
	params.Set("amount", strconv.FormatInt(amountMinor, 10))
	var out struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	}
	if err := g.do(ctx, http.MethodPost, "/customers/"+customerID+"/balance_transactions", params, &out); err != nil {
		return adapter.Credit{}, err
	}
	return adapter.Credit{ID: out.ID, AmountMinor: out.Amount}, nil
}

func intentFromStripe(in stripeIntent) adapter.PaymentIntent {
	return adapter.PaymentIntent{ID: in.ID, ClientSecret: in.ClientSecret, Status: in.Status}
}

func subscriptionFromStripe(in stripeSubscription) adapter.Subscription {
	return adapter.Subscription{
		ID:                 in.ID,
		Status:             in.Status,
		BillingCycleAnchor: time.Unix(in.BillingCycleAnchor, 0),
		CurrentPeriodEnd:   time.Unix(in.CurrentPeriodEnd, 0),
		PauseCollection:    in.PauseCollection != nil,
	}
}
