//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/adapter"
	"gym-studio-pos/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ---- Mock TransactionManager ----

// mockTx is the handle MockTxManager hands to the callback so tests can
// assert the repositories were invoked inside the transaction.
type mockTx struct{}

type MockTxManager struct {
	mu    sync.Mutex
	Calls int
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx, mockTx{})
}

// ---- Mock MembershipRepository ----

type MockMembershipRepo struct {
	mu   sync.Mutex
	data map[string]*model.Membership

	SaveFunc          func(ctx context.Context, tx repository.Tx, m *model.Membership) error
	UpdateGuardedFunc func(ctx context.Context, tx repository.Tx, m *model.Membership, expected model.MembershipStatus) error
	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id string) (*model.Membership, error)
}

var _ repository.MembershipRepository = (*MockMembershipRepo)(nil)

func NewMockMembershipRepo() *MockMembershipRepo {
	return &MockMembershipRepo{data: make(map[string]*model.Membership)}
}

func (r *MockMembershipRepo) Save(ctx context.Context, tx repository.Tx, m *model.Membership) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, m)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.data[m.ID] = &cp
	return nil
}

func (r *MockMembershipRepo) UpdateGuarded(ctx context.Context, tx repository.Tx, m *model.Membership, expected model.MembershipStatus) error {
	if r.UpdateGuardedFunc != nil {
		return r.UpdateGuardedFunc(ctx, tx, m, expected)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != expected {
		return domain.ErrInvalidStateTransition
	}
	cp := *m
	r.data[m.ID] = &cp
	return nil
}

func (r *MockMembershipRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Membership, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *MockMembershipRepo) FindByCustomer(ctx context.Context, tx repository.Tx, orgID, customerID string) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.data {
		if m.OrgID == orgID && m.CustomerID == customerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMembershipRepo) ListScheduledPausesDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.data {
		if m.Status == model.MembershipStatusActive && m.ScheduledPause != nil && !m.ScheduledPause.StartAt.After(now) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMembershipRepo) ListPausedResumesDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.data {
		if m.Status != model.MembershipStatusPaused || m.CurrentSuspension == nil || !m.CurrentSuspension.Scheduled {
			continue
		}
		resumeAt := m.CurrentSuspension.PausedAt.AddDate(0, 0, m.CurrentSuspension.Days)
		if !resumeAt.After(now) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMembershipRepo) ListCancellationsDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.data {
		if m.Status == model.MembershipStatusPendingCancellation && m.CancellationScheduledFor != nil && !m.CancellationScheduledFor.After(now) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMembershipRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.MembershipStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.MembershipStatus]int)
	for _, m := range r.data {
		out[m.Status]++
	}
	return out, nil
}

// ---- Mock ScheduleRepository ----

type mockSlot struct {
	id        string
	location  string
	at        time.Time
	available int
	customers map[string]bool
}

type MockScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*model.Schedule // keyed by orgID+"/"+productID
	slots     map[string]*mockSlot       // keyed by slot id
	capacity  map[string]int             // product id -> capacity fallback

	SlotAvailabilityFunc func(ctx context.Context, tx repository.Tx, orgID, productID, locationID string, at time.Time) (int, error)
	ReserveSeatFunc      func(ctx context.Context, tx repository.Tx, slotID, customerID, transactionID string) (repository.SeatOutcome, error)
}

var _ repository.ScheduleRepository = (*MockScheduleRepo)(nil)

func NewMockScheduleRepo() *MockScheduleRepo {
	return &MockScheduleRepo{
		schedules: make(map[string]*model.Schedule),
		slots:     make(map[string]*mockSlot),
		capacity:  make(map[string]int),
	}
}

func (r *MockScheduleRepo) SetCapacity(productID string, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capacity[productID] = capacity
}

func (r *MockScheduleRepo) Save(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.schedules[s.OrgID+"/"+s.ProductID] = &cp
	return nil
}

func (r *MockScheduleRepo) FindByOrgAndProduct(ctx context.Context, tx repository.Tx, orgID, productID string) (*model.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[orgID+"/"+productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockScheduleRepo) EnsureSlot(ctx context.Context, tx repository.Tx, scheduleID, locationID string, at time.Time, capacity int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.slots {
		if s.location == locationID && s.at.Equal(at) {
			return id, nil
		}
	}
	id := uuid.NewString()
	r.slots[id] = &mockSlot{id: id, location: locationID, at: at, available: capacity, customers: make(map[string]bool)}
	return id, nil
}

func (r *MockScheduleRepo) SlotAvailability(ctx context.Context, tx repository.Tx, orgID, productID, locationID string, at time.Time) (int, error) {
	if r.SlotAvailabilityFunc != nil {
		return r.SlotAvailabilityFunc(ctx, tx, orgID, productID, locationID, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.location == locationID && s.at.Equal(at) {
			return s.available, nil
		}
	}
	if c, ok := r.capacity[productID]; ok {
		return c, nil
	}
	return 0, domain.ErrNotFound
}

func (r *MockScheduleRepo) ReserveSeat(ctx context.Context, tx repository.Tx, slotID, customerID, transactionID string) (repository.SeatOutcome, error) {
	if r.ReserveSeatFunc != nil {
		return r.ReserveSeatFunc(ctx, tx, slotID, customerID, transactionID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if s.customers[customerID] {
		return repository.SeatDuplicate, nil
	}
	if s.available <= 0 {
		return repository.SeatSlotFull, nil
	}
	s.available--
	s.customers[customerID] = true
	return repository.SeatReserved, nil
}

// ---- Mock TransactionRepository ----

type MockTransactionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Transaction

	SaveFunc          func(ctx context.Context, tx repository.Tx, t *model.Transaction) error
	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error)
	MarkAllocatedFunc func(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error)
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{data: make(map[string]*model.Transaction)}
}

func (r *MockTransactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.data[t.ID] = &cp
	return nil
}

func (r *MockTransactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MockTransactionRepo) FindByProviderIntentID(ctx context.Context, tx repository.Tx, intentID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.data {
		if t.ProviderIntentID == intentID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockTransactionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

func (r *MockTransactionRepo) MarkAllocated(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	if r.MarkAllocatedFunc != nil {
		return r.MarkAllocatedFunc(ctx, tx, id, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if t.AllocatedAt != nil {
		return false, nil
	}
	t.AllocatedAt = &at
	return true, nil
}

func (r *MockTransactionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, t := range r.data {
		if (t.Status == model.TransactionStatusPending || t.Status == model.TransactionStatusRequiresCapture) && !t.CreatedAt.After(cutoff) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockTransactionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.TransactionStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.TransactionStatus]int)
	for _, t := range r.data {
		out[t.Status]++
	}
	return out, nil
}

// ---- Mock PrepaidPassRepository ----

type MockPrepaidRepo struct {
	mu     sync.Mutex
	data   map[string]*model.PrepaidPass
	Issued []string // pass IDs in save order

	RedeemGuardedFunc func(ctx context.Context, tx repository.Tx, passID string, red model.Redemption) (*model.PrepaidPass, error)
}

var _ repository.PrepaidPassRepository = (*MockPrepaidRepo)(nil)

func NewMockPrepaidRepo() *MockPrepaidRepo {
	return &MockPrepaidRepo{data: make(map[string]*model.PrepaidPass)}
}

func (r *MockPrepaidRepo) Save(ctx context.Context, tx repository.Tx, p *model.PrepaidPass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[p.ID]; !ok {
		r.Issued = append(r.Issued, p.ID)
	}
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPrepaidRepo) FindByCode(ctx context.Context, tx repository.Tx, orgID, code string) (*model.PrepaidPass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.data {
		if p.OrgID == orgID && p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPrepaidRepo) RedeemGuarded(ctx context.Context, tx repository.Tx, passID string, red model.Redemption) (*model.PrepaidPass, error) {
	if r.RedeemGuardedFunc != nil {
		return r.RedeemGuardedFunc(ctx, tx, passID, red)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[passID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := p.Redeem(red.Count, red.CustomerID, red.TransactionID, red.At); err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

// ---- Mock ProductRepository ----

type MockProductRepo struct {
	mu   sync.Mutex
	data map[string]*model.Product
}

var _ repository.ProductRepository = (*MockProductRepo)(nil)

func NewMockProductRepo() *MockProductRepo {
	return &MockProductRepo{data: make(map[string]*model.Product)}
}

func (r *MockProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockProductRepo) ListByOrg(ctx context.Context, tx repository.Tx, orgID string) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Product
	for _, p := range r.data {
		if p.OrgID == orgID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock OrgSettingsRepository ----

type MockOrgSettingsRepo struct {
	mu   sync.Mutex
	data map[string]*model.OrgSettings

	GetFunc func(ctx context.Context, tx repository.Tx, orgID string) (*model.OrgSettings, error)
}

var _ repository.OrgSettingsRepository = (*MockOrgSettingsRepo)(nil)

func NewMockOrgSettingsRepo() *MockOrgSettingsRepo {
	return &MockOrgSettingsRepo{data: make(map[string]*model.OrgSettings)}
}

func (r *MockOrgSettingsRepo) Get(ctx context.Context, tx repository.Tx, orgID string) (*model.OrgSettings, error) {
	if r.GetFunc != nil {
		return r.GetFunc(ctx, tx, orgID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[orgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockOrgSettingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.OrgSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.data[s.OrgID] = &cp
	return nil
}

// ---- Mock CustomerRepository ----

type MockCustomerRepo struct {
	mu       sync.Mutex
	data     map[string]*model.Customer
	Assigned []string
}

var _ repository.CustomerRepository = (*MockCustomerRepo)(nil)

func NewMockCustomerRepo() *MockCustomerRepo {
	return &MockCustomerRepo{data: make(map[string]*model.Customer)}
}

func (r *MockCustomerRepo) Save(ctx context.Context, tx repository.Tx, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.data[c.ID] = &cp
	return nil
}

func (r *MockCustomerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockCustomerRepo) MarkAssigned(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Assigned = append(r.Assigned, id)
	if c, ok := r.data[id]; ok {
		c.Assigned = true
	}
	return nil
}

// ---- Mock AdmissionRepository ----

type MockAdmissionRepo struct {
	mu    sync.Mutex
	Saved []*model.Admission
}

var _ repository.AdmissionRepository = (*MockAdmissionRepo)(nil)

func NewMockAdmissionRepo() *MockAdmissionRepo { return &MockAdmissionRepo{} }

func (r *MockAdmissionRepo) Save(ctx context.Context, tx repository.Tx, a *model.Admission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.Saved = append(r.Saved, &cp)
	return nil
}

func (r *MockAdmissionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Admission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.Saved {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockAdmissionRepo) ListActiveByCustomer(ctx context.Context, tx repository.Tx, orgID, customerID string, now time.Time) ([]*model.Admission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Admission
	for _, a := range r.Saved {
		if a.OrgID != orgID || a.CustomerID != customerID {
			continue
		}
		if a.StartAt.After(now) {
			continue
		}
		if a.EndAt != nil && !a.EndAt.After(now) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock BillingProvider ----

type MockBilling struct {
	mu sync.Mutex

	CreatePaymentIntentFunc   func(ctx context.Context, amountMinor int64, currency string, captureMethod adapter.CaptureMethod) (adapter.PaymentIntent, error)
	CapturePaymentIntentFunc  func(ctx context.Context, id string) (adapter.PaymentIntent, error)
	CancelPaymentIntentFunc   func(ctx context.Context, id string) (adapter.PaymentIntent, error)
	RetrievePaymentIntentFunc func(ctx context.Context, id string) (adapter.PaymentIntent, error)
	UpdateSubscriptionFunc    func(ctx context.Context, id string, upd adapter.SubscriptionUpdate) (adapter.Subscription, error)
	CancelSubscriptionFunc    func(ctx context.Context, id string) (adapter.Subscription, error)
	CreateCreditNoteFunc      func(ctx context.Context, customerID string, amountMinor int64) (adapter.Credit, error)

	Calls struct {
		CreateIntent  int
		CaptureIntent []string
		CancelIntent  []string
		UpdateSub     []adapter.SubscriptionUpdate
		CancelSub     []string
		CreditNotes   []int64
	}
}

var _ adapter.BillingProvider = (*MockBilling)(nil)

func NewMockBilling() *MockBilling { return &MockBilling{} }

func (m *MockBilling) Name() string { return "mock" }

func (m *MockBilling) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, captureMethod adapter.CaptureMethod) (adapter.PaymentIntent, error) {
	m.mu.Lock()
	m.Calls.CreateIntent++
	m.mu.Unlock()
	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, amountMinor, currency, captureMethod)
	}
	return adapter.PaymentIntent{ID: "pi_" + uuid.NewString(), ClientSecret: "cs_test", Status: "requires_capture"}, nil
}

func (m *MockBilling) CapturePaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	m.mu.Lock()
	m.Calls.CaptureIntent = append(m.Calls.CaptureIntent, id)
	m.mu.Unlock()
	if m.CapturePaymentIntentFunc != nil {
		return m.CapturePaymentIntentFunc(ctx, id)
	}
	return adapter.PaymentIntent{ID: id, Status: "succeeded"}, nil
}

func (m *MockBilling) CancelPaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	m.mu.Lock()
	m.Calls.CancelIntent = append(m.Calls.CancelIntent, id)
	m.mu.Unlock()
	if m.CancelPaymentIntentFunc != nil {
		return m.CancelPaymentIntentFunc(ctx, id)
	}
	return adapter.PaymentIntent{ID: id, Status: "canceled"}, nil
}

func (m *MockBilling) RetrievePaymentIntent(ctx context.Context, id string) (adapter.PaymentIntent, error) {
	if m.RetrievePaymentIntentFunc != nil {
		return m.RetrievePaymentIntentFunc(ctx, id)
	}
	return adapter.PaymentIntent{ID: id, Status: "requires_capture"}, nil
}

func (m *MockBilling) RetrieveSubscription(ctx context.Context, id string) (adapter.Subscription, error) {
	return adapter.Subscription{ID: id, Status: "active"}, nil
}

func (m *MockBilling) UpdateSubscription(ctx context.Context, id string, upd adapter.SubscriptionUpdate) (adapter.Subscription, error) {
	m.mu.Lock()
	m.Calls.UpdateSub = append(m.Calls.UpdateSub, upd)
	m.mu.Unlock()
	if m.UpdateSubscriptionFunc != nil {
		return m.UpdateSubscriptionFunc(ctx, id, upd)
	}
	return adapter.Subscription{ID: id, Status: "active"}, nil
}

func (m *MockBilling) CancelSubscription(ctx context.Context, id string) (adapter.Subscription, error) {
	m.mu.Lock()
	m.Calls.CancelSub = append(m.Calls.CancelSub, id)
	m.mu.Unlock()
	if m.CancelSubscriptionFunc != nil {
		return m.CancelSubscriptionFunc(ctx, id)
	}
	return adapter.Subscription{ID: id, Status: "canceled"}, nil
}

func (m *MockBilling) CreateCreditNote(ctx context.Context, customerID string, amountMinor int64) (adapter.Credit, error) {
	m.mu.Lock()
	m.Calls.CreditNotes = append(m.Calls.CreditNotes, amountMinor)
	m.mu.Unlock()
	if m.CreateCreditNoteFunc != nil {
		return m.CreateCreditNoteFunc(ctx, customerID, amountMinor)
	}
	return adapter.Credit{ID: "cn_test", AmountMinor: amountMinor}, nil
}

// ---- Mock Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]bool
	Locks []string

	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if l.TryLockFunc != nil {
		return l.TryLockFunc(ctx, key, ttl)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return "", domain.ErrLockNotAcquired
	}
	l.held[key] = true
	l.Locks = append(l.Locks, key)
	return uuid.NewString(), nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
