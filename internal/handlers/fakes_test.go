package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/auth"
	"github.com/zuricart/api/internal/repositories"
	"github.com/zuricart/api/internal/services"
)

// Stub services with overridable funcs, so each test pins only the calls it
// expects.

type stubCartService struct {
	getCart      func(ctx context.Context, userID string) (services.CartView, error)
	addItem      func(ctx context.Context, cmd services.AddItemCommand) (services.CartView, error)
	updateItem   func(ctx context.Context, cmd services.UpdateItemCommand) (services.CartView, error)
	removeItem   func(ctx context.Context, userID string, itemID uuid.UUID) (services.CartView, error)
	applyCoupon  func(ctx context.Context, userID, code string) (services.CartView, error)
	removeCoupon func(ctx context.Context, userID string) (services.CartView, error)
}

func (s *stubCartService) GetCart(ctx context.Context, userID string) (services.CartView, error) {
	return s.getCart(ctx, userID)
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddItemCommand) (services.CartView, error) {
	return s.addItem(ctx, cmd)
}

func (s *stubCartService) UpdateItem(ctx context.Context, cmd services.UpdateItemCommand) (services.CartView, error) {
	return s.updateItem(ctx, cmd)
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (services.CartView, error) {
	return s.removeItem(ctx, userID, itemID)
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, userID, code string) (services.CartView, error) {
	return s.applyCoupon(ctx, userID, code)
}

func (s *stubCartService) RemoveCoupon(ctx context.Context, userID string) (services.CartView, error) {
	return s.removeCoupon(ctx, userID)
}

type stubCheckoutService struct {
	checkout func(ctx context.Context, cmd services.CheckoutCommand) (services.OrderView, error)
}

func (s *stubCheckoutService) Checkout(ctx context.Context, cmd services.CheckoutCommand) (services.OrderView, error) {
	return s.checkout(ctx, cmd)
}

type stubOrderService struct {
	list        func(ctx context.Context, userID string, filter repositories.ListFilter) (repositories.Page[domain.Order], error)
	get         func(ctx context.Context, userID string, orderID uuid.UUID) (services.OrderView, error)
	cancel      func(ctx context.Context, userID string, orderID uuid.UUID) (services.OrderView, error)
	adminList   func(ctx context.Context, filter repositories.OrderListFilter) (repositories.Page[domain.Order], error)
	adminUpdate func(ctx context.Context, orderID uuid.UUID, rawStatus string) (services.OrderView, error)
}

func (s *stubOrderService) ListOrders(ctx context.Context, userID string, filter repositories.ListFilter) (repositories.Page[domain.Order], error) {
	return s.list(ctx, userID, filter)
}

func (s *stubOrderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (services.OrderView, error) {
	return s.get(ctx, userID, orderID)
}

func (s *stubOrderService) Cancel(ctx context.Context, userID string, orderID uuid.UUID) (services.OrderView, error) {
	return s.cancel(ctx, userID, orderID)
}

func (s *stubOrderService) AdminListOrders(ctx context.Context, filter repositories.OrderListFilter) (repositories.Page[domain.Order], error) {
	return s.adminList(ctx, filter)
}

func (s *stubOrderService) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (services.OrderView, error) {
	return s.adminUpdate(ctx, orderID, rawStatus)
}

type stubPaymentService struct {
	initialize func(ctx context.Context, cmd services.InitializePaymentCommand) (services.PaymentInitView, error)
	reconcile  func(ctx context.Context, cmd services.ReconcileCommand) (domain.Payment, error)
	refund     func(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error)
}

func (s *stubPaymentService) Initialize(ctx context.Context, cmd services.InitializePaymentCommand) (services.PaymentInitView, error) {
	return s.initialize(ctx, cmd)
}

func (s *stubPaymentService) Reconcile(ctx context.Context, cmd services.ReconcileCommand) (domain.Payment, error) {
	return s.reconcile(ctx, cmd)
}

func (s *stubPaymentService) Refund(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error) {
	return s.refund(ctx, paymentID)
}

// withIdentity attaches an authenticated user to the request context.
func withIdentity(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), &auth.Identity{UserID: userID, Role: auth.RoleUser}))
}

// contextWithEmailIdentity builds an identity carrying an email claim.
func contextWithEmailIdentity(ctx context.Context, userID, email string) context.Context {
	return auth.WithIdentity(ctx, &auth.Identity{UserID: userID, Email: email, Role: auth.RoleUser})
}

// withRouteParam attaches a chi URL parameter to the request context.
func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func do(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// responseEnvelope mirrors the wire envelope for assertions.
type responseEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    *struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatal("success = true on error response")
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %q", env.Error, code)
	}
}
