package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avilesdev/storefront-backend/internal/bag"
	"github.com/avilesdev/storefront-backend/internal/catalog"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/internal/payment"
	"github.com/avilesdev/storefront-backend/internal/purchase"
	"github.com/avilesdev/storefront-backend/pkg/config"
	"github.com/avilesdev/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/avilesdev/storefront-backend/pkg/gateway"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memorySlot struct {
	bags map[string][]bag.Item
}

func (s *memorySlot) Load(ctx context.Context, sessionID string) ([]bag.Item, error) {
	return s.bags[sessionID], nil
}

func (s *memorySlot) Save(ctx context.Context, sessionID string, items []bag.Item) error {
	s.bags[sessionID] = items
	return nil
}

func (s *memorySlot) Drop(ctx context.Context, sessionID string) error {
	delete(s.bags, sessionID)
	return nil
}

type memoryStateStore struct {
	states map[string]*checkout.State
}

func (s *memoryStateStore) Load(ctx context.Context, sessionID string) (*checkout.State, error) {
	return s.states[sessionID], nil
}

func (s *memoryStateStore) Save(ctx context.Context, sessionID string, state *checkout.State) error {
	s.states[sessionID] = state
	return nil
}

func (s *memoryStateStore) Drop(ctx context.Context, sessionID string) error {
	delete(s.states, sessionID)
	return nil
}

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, id uuid.UUID) (*catalog.ResolvedItem, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubGateway struct{}

func (stubGateway) CreateOrder(ctx context.Context, amountCents int, receipt string) (*gateway.Order, error) {
	return &gateway.Order{ID: "order_test", AmountCents: amountCents, Currency: "INR"}, nil
}

func (stubGateway) VerifySignature(payload gateway.SuccessPayload) bool { return false }
func (stubGateway) KeyID() string                                      { return "key_test" }
func (stubGateway) Currency() string                                   { return "INR" }
func (stubGateway) MerchantName() string                               { return "Test Shop" }

type stubPurchases struct{}

func (stubPurchases) Record(ctx context.Context, input purchase.RecordInput) (*models.Purchase, error) {
	return &models.Purchase{ID: uuid.New(), GatewayOrderID: input.GatewayOrderID}, nil
}

type memoryLock struct {
	held map[string]bool
}

func (l *memoryLock) Acquire(ctx context.Context, sessionID string) (bool, error) {
	if l.held[sessionID] {
		return false, nil
	}
	l.held[sessionID] = true
	return true, nil
}

func (l *memoryLock) Claim(ctx context.Context, sessionID string) (bool, error) {
	if !l.held[sessionID] {
		return false, nil
	}
	delete(l.held, sessionID)
	return true, nil
}

func (l *memoryLock) Release(ctx context.Context, sessionID string) error {
	delete(l.held, sessionID)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "storefront-test"},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := bag.NewStore(&memorySlot{bags: map[string][]bag.Item{}}, stubResolver{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	wizard, err := checkout.NewWizard(&memoryStateStore{states: map[string]*checkout.State{}}, store)
	if err != nil {
		t.Fatalf("NewWizard: %v", err)
	}
	orchestrator, err := payment.NewOrchestrator(
		store,
		wizard,
		stubGateway{},
		stubPurchases{},
		&memoryLock{held: map[string]bool{}},
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	purchaseService := purchase.Service(nil)

	return NewRouter(
		testConfig(),
		nil,
		stubPinger{},
		stubPinger{},
		prometheus.NewRegistry(),
		stubResolver{},
		store,
		wizard,
		orchestrator,
		purchaseService,
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAnonymousRequestGetsSessionToken(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/bag", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Session-Token") == "" {
		t.Fatalf("expected a fresh session token header")
	}
}

func TestCheckoutStateStartsAtCustomer(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/checkout", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data checkout.State `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Step != checkout.StepCustomer {
		t.Fatalf("step = %q", envelope.Data.Step)
	}
}
