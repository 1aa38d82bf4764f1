package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
	"gym-studio-pos/internal/infra/logging"
	"gym-studio-pos/internal/infra/metrics"
	"gym-studio-pos/internal/usecase"
)

// WebhookDeduper remembers provider event IDs so replayed deliveries are
// acknowledged without re-processing.
type WebhookDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// Server exposes the POS surface: checkout, membership lifecycle, prepaid
// passes, the billing webhook, and a small staff read API.
type Server struct {
	checkout      usecase.CheckoutUseCase
	pricing       usecase.PricingUseCase
	memberships   usecase.MembershipUseCase
	passes        usecase.PrepaidUseCase
	membershipDB  repository.MembershipRepository
	auth          *AuthManager
	dedup         WebhookDeduper
	webhookSecret []byte
	log           *zerolog.Logger
}

func NewServer(
	checkout usecase.CheckoutUseCase,
	pricing usecase.PricingUseCase,
	memberships usecase.MembershipUseCase,
	passes usecase.PrepaidUseCase,
	membershipDB repository.MembershipRepository,
	auth *AuthManager,
	dedup WebhookDeduper,
	webhookSecret string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkout:      checkout,
		pricing:       pricing,
		memberships:   memberships,
		passes:        passes,
		membershipDB:  membershipDB,
		auth:          auth,
		dedup:         dedup,
		webhookSecret: []byte(webhookSecret),
		log:           logger,
	}
}

// Router assembles all routes with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/webhooks/billing", s.handleBillingWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireStaff)
		r.Post("/quote", s.handleQuote)
		r.Post("/checkout", s.handleCheckoutBegin)
		r.Post("/checkout/{id}/capture", s.handleCheckoutCapture)
		r.Post("/checkout/{id}/cancel", s.handleCheckoutCancel)

		r.Route("/memberships/{id}", func(r chi.Router) {
			r.Get("/", s.handleMembershipGet)
			r.Get("/suspension-days", s.handleSuspensionDays)
			r.Post("/pause", s.handleMembershipPause)
			r.Delete("/pause", s.handleCancelScheduledPause)
			r.Post("/resume", s.handleMembershipResume)
			r.Post("/cancel", s.handleMembershipCancel)
			r.Post("/reactivate", s.handleMembershipReactivate)
		})

		r.Post("/passes/redeem", s.handlePassRedeem)
	})

	return Chain(r, TraceID(), Recover(s.log), RequestLog(s.log), Timeout(30*time.Second))
}

type claimsKey struct{}

func (s *Server) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		ctx = logging.WithOrgID(ctx, claims.OrgID)
		ctx = logging.WithEmployeeID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(ctx context.Context) *StaffClaims {
	c, _ := ctx.Value(claimsKey{}).(*StaffClaims)
	return c
}

// ----- checkout -----

type checkoutRequest struct {
	Cart          model.Cart `json:"cart"`
	PaymentMethod string     `json:"payment_method"`
	CustomerID    *string    `json:"customer_id,omitempty"`
}

type checkoutResponse struct {
	Transaction  *transactionView `json:"transaction"`
	ClientSecret string           `json:"client_secret,omitempty"`
}

type transactionView struct {
	ID      string                  `json:"id"`
	Status  model.TransactionStatus `json:"status"`
	Totals  model.Totals            `json:"totals"`
	Created time.Time               `json:"created_at"`
}

func viewTransaction(t *model.Transaction) *transactionView {
	return &transactionView{ID: t.ID, Status: t.Status, Totals: t.Totals, Created: t.CreatedAt}
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var cart model.Cart
	if err := json.NewDecoder(r.Body).Decode(&cart); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if c := claimsFrom(r.Context()); c != nil {
		cart.OrgID = c.OrgID
	}
	totals, err := s.pricing.Quote(r.Context(), &cart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleCheckoutBegin(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c := claimsFrom(r.Context())
	actor := usecase.Actor{
		OrgID:      c.OrgID,
		LocationID: c.LocationID,
		EmployeeID: c.Subject,
		CustomerID: req.CustomerID,
	}
	req.Cart.OrgID = c.OrgID
	t, secret, err := s.checkout.Begin(r.Context(), actor, &req.Cart, req.PaymentMethod)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{Transaction: viewTransaction(t), ClientSecret: secret})
}

func (s *Server) handleCheckoutCapture(w http.ResponseWriter, r *http.Request) {
	t, err := s.checkout.Capture(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.TransactionsTotal.WithLabelValues(string(t.Status)).Inc()
	metrics.TransactionAmount.Observe(t.Totals.Total)
	writeJSON(w, http.StatusOK, viewTransaction(t))
}

func (s *Server) handleCheckoutCancel(w http.ResponseWriter, r *http.Request) {
	t, err := s.checkout.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.TransactionsTotal.WithLabelValues(string(t.Status)).Inc()
	writeJSON(w, http.StatusOK, viewTransaction(t))
}

// ----- billing webhook -----

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"object"`
	} `json:"data"`
}

// handleBillingWebhook verifies the HMAC signature, drops replayed events,
// and applies the intent status. Always returns 200 for events referencing
// unknown transactions so the provider stops redelivering.
func (s *Server) handleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if !s.verifySignature(body, r.Header.Get("Webhook-Signature")) {
		writeError(w, http.StatusUnauthorized, "bad signature")
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid event")
		return
	}

	if s.dedup != nil {
		seen, err := s.dedup.Seen(r.Context(), ev.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", ev.ID).Msg("webhook dedup unavailable")
		} else if seen {
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	err = s.checkout.HandleProviderEvent(r.Context(), usecase.ProviderEvent{
		Type:     ev.Type,
		IntentID: ev.Data.Object.ID,
		Status:   ev.Data.Object.Status,
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.log.Error().Err(err).Str("event_id", ev.ID).Msg("webhook processing failed")
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) verifySignature(body []byte, signature string) bool {
	if len(s.webhookSecret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ----- memberships -----

type pauseRequest struct {
	Days    int        `json:"days"`
	StartAt *time.Time `json:"start_at,omitempty"`
	Note    string     `json:"note,omitempty"`
}

func (s *Server) handleMembershipGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.membershipDB.FindByID(r.Context(), repository.NoTX, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMembershipPause(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c := claimsFrom(r.Context())
	res, err := s.memberships.Pause(r.Context(), chi.URLParam(r, "id"), req.Days, req.StartAt, req.Note, c.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.LifecycleTransitions.WithLabelValues("pause").Inc()
	if res.Warning != nil {
		metrics.BillingSyncFailures.Inc()
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCancelScheduledPause(w http.ResponseWriter, r *http.Request) {
	m, err := s.memberships.CancelScheduledPause(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMembershipResume(w http.ResponseWriter, r *http.Request) {
	res, err := s.memberships.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.LifecycleTransitions.WithLabelValues("resume").Inc()
	if !res.Synced {
		metrics.BillingSyncFailures.Inc()
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMembershipCancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	m, err := s.memberships.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.LifecycleTransitions.WithLabelValues("cancel").Inc()
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMembershipReactivate(w http.ResponseWriter, r *http.Request) {
	m, err := s.memberships.Reactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.LifecycleTransitions.WithLabelValues("reactivate").Inc()
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleSuspensionDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.memberships.RemainingSuspensionDays(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining_days": days})
}

// ----- prepaid passes -----

func (s *Server) handlePassRedeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string `json:"code"`
		Count         int    `json:"count"`
		CustomerID    string `json:"customer_id"`
		TransactionID string `json:"transaction_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c := claimsFrom(r.Context())
	p, err := s.passes.Redeem(r.Context(), c.OrgID, req.Code, req.Count, req.CustomerID, req.TransactionID)
	if err != nil {
		metrics.PassRedemptions.WithLabelValues("rejected").Inc()
		writeDomainError(w, err)
		return
	}
	metrics.PassRedemptions.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, p)
}

// ----- helpers -----

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMissingCustomerAssignment):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrSuspensionLimitExceeded),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrNoScheduledPause),
		errors.Is(err, domain.ErrPassDepleted),
		errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrExternalProvider):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
