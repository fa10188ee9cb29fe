package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/zuricart/api/internal/services"
)

func TestCartHandlerGetReturnsView(t *testing.T) {
	cartID := uuid.New()
	cart := &stubCartService{
		getCart: func(_ context.Context, userID string) (services.CartView, error) {
			if userID != "user-123" {
				t.Errorf("userID = %q, want user-123", userID)
			}
			return services.CartView{ID: cartID, Items: []services.CartItemView{}, Subtotal: 5000_00, Total: 5375_00}, nil
		},
	}
	h := NewCartHandler(cart)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/cart", nil), "user-123")
	rec := do(h.Get, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatal("success = false")
	}
	var view services.CartView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if view.ID != cartID || view.Total != 5375_00 {
		t.Fatalf("view = %+v", view)
	}
}

func TestCartHandlerGetRequiresIdentity(t *testing.T) {
	h := NewCartHandler(&stubCartService{})

	rec := do(h.Get, httptest.NewRequest(http.MethodGet, "/cart", nil))

	requireErrorCode(t, rec, http.StatusUnauthorized, "unauthenticated")
}

func TestCartHandlerAddItem(t *testing.T) {
	variantID := uuid.New()
	var got services.AddItemCommand
	cart := &stubCartService{
		addItem: func(_ context.Context, cmd services.AddItemCommand) (services.CartView, error) {
			got = cmd
			return services.CartView{ItemCount: 2}, nil
		},
	}
	h := NewCartHandler(cart)

	body := `{"variantId":"` + variantID.String() + `","quantity":2}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body)), "user-123")
	rec := do(h.AddItem, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %q)", rec.Code, rec.Body.String())
	}
	if got.UserID != "user-123" || got.VariantID != variantID || got.Quantity != 2 {
		t.Fatalf("command = %+v", got)
	}
}

func TestCartHandlerAddItemRejectsMalformedVariant(t *testing.T) {
	h := NewCartHandler(&stubCartService{})

	body := `{"variantId":"not-a-uuid","quantity":1}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body)), "user-123")
	rec := do(h.AddItem, req)

	requireErrorCode(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestCartHandlerAddItemRejectsUnknownFields(t *testing.T) {
	h := NewCartHandler(&stubCartService{})

	body := `{"variantId":"` + uuid.NewString() + `","quantity":1,"price":1}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body)), "user-123")
	rec := do(h.AddItem, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCartHandlerAddItemInsufficientStock(t *testing.T) {
	variantID := uuid.New()
	cart := &stubCartService{
		addItem: func(context.Context, services.AddItemCommand) (services.CartView, error) {
			return services.CartView{}, &services.InsufficientStockError{VariantID: variantID, Requested: 5, Available: 3}
		},
	}
	h := NewCartHandler(cart)

	body := `{"variantId":"` + variantID.String() + `","quantity":5}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body)), "user-123")
	rec := do(h.AddItem, req)

	requireErrorCode(t, rec, http.StatusConflict, "insufficient_stock")
	env := decodeEnvelope(t, rec)
	if env.Error.Details["available"] != float64(3) || env.Error.Details["requested"] != float64(5) {
		t.Fatalf("details = %+v", env.Error.Details)
	}
}

func TestCartHandlerUpdateItem(t *testing.T) {
	itemID := uuid.New()
	var got services.UpdateItemCommand
	cart := &stubCartService{
		updateItem: func(_ context.Context, cmd services.UpdateItemCommand) (services.CartView, error) {
			got = cmd
			return services.CartView{}, nil
		},
	}
	h := NewCartHandler(cart)

	req := withIdentity(httptest.NewRequest(http.MethodPut, "/cart/items/"+itemID.String(), strings.NewReader(`{"quantity":4}`)), "user-123")
	req = withRouteParam(req, "itemID", itemID.String())
	rec := do(h.UpdateItem, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	if got.ItemID != itemID || got.Quantity != 4 {
		t.Fatalf("command = %+v", got)
	}
}

func TestCartHandlerUpdateItemRejectsBadID(t *testing.T) {
	h := NewCartHandler(&stubCartService{})

	req := withIdentity(httptest.NewRequest(http.MethodPut, "/cart/items/nope", strings.NewReader(`{"quantity":4}`)), "user-123")
	req = withRouteParam(req, "itemID", "nope")
	rec := do(h.UpdateItem, req)

	requireErrorCode(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestCartHandlerRemoveItemNotFound(t *testing.T) {
	cart := &stubCartService{
		removeItem: func(context.Context, string, uuid.UUID) (services.CartView, error) {
			return services.CartView{}, services.ErrCartItemNotFound
		},
	}
	h := NewCartHandler(cart)

	itemID := uuid.NewString()
	req := withIdentity(httptest.NewRequest(http.MethodDelete, "/cart/items/"+itemID, nil), "user-123")
	req = withRouteParam(req, "itemID", itemID)
	rec := do(h.RemoveItem, req)

	requireErrorCode(t, rec, http.StatusNotFound, "cart_item_not_found")
}

func TestCartHandlerApplyCouponMinimumNotMet(t *testing.T) {
	cart := &stubCartService{
		applyCoupon: func(_ context.Context, _ string, code string) (services.CartView, error) {
			if code != "BULK20" {
				t.Errorf("code = %q, want BULK20", code)
			}
			return services.CartView{}, &services.MinimumNotMetError{Code: "BULK20", Required: 10_000_00, Subtotal: 4_000_00}
		},
	}
	h := NewCartHandler(cart)

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/cart/coupon", strings.NewReader(`{"code":"BULK20"}`)), "user-123")
	rec := do(h.ApplyCoupon, req)

	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "coupon_minimum_not_met")
}

func TestCartHandlerRemoveCoupon(t *testing.T) {
	called := false
	cart := &stubCartService{
		removeCoupon: func(context.Context, string) (services.CartView, error) {
			called = true
			return services.CartView{}, nil
		},
	}
	h := NewCartHandler(cart)

	req := withIdentity(httptest.NewRequest(http.MethodDelete, "/cart/coupon", nil), "user-123")
	rec := do(h.RemoveCoupon, req)

	if rec.Code != http.StatusOK || !called {
		t.Fatalf("status = %d, called = %v", rec.Code, called)
	}
}
