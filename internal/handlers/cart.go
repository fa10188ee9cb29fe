package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/zuricart/api/internal/platform/httpx"
	"github.com/zuricart/api/internal/services"
)

// CartHandler serves the authenticated user's cart.
type CartHandler struct {
	cart services.CartService
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(cart services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// Get responds to GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	view, err := h.cart.GetCart(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view, "")
}

// AddItem responds to POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	var req struct {
		VariantID string `json:"variantId"`
		Quantity  int    `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_input", "malformed variantId", http.StatusBadRequest))
		return
	}
	view, err := h.cart.AddItem(r.Context(), services.AddItemCommand{
		UserID:    identity.UserID,
		VariantID: variantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, view, "item added")
}

// UpdateItem responds to PUT /cart/items/{itemID}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.cart.UpdateItem(r.Context(), services.UpdateItemCommand{
		UserID:   identity.UserID,
		ItemID:   itemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view, "item updated")
}

// RemoveItem responds to DELETE /cart/items/{itemID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}
	view, err := h.cart.RemoveItem(r.Context(), identity.UserID, itemID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view, "item removed")
}

// ApplyCoupon responds to POST /cart/coupon.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.cart.ApplyCoupon(r.Context(), identity.UserID, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view, "coupon applied")
}

// RemoveCoupon responds to DELETE /cart/coupon.
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	view, err := h.cart.RemoveCoupon(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view, "coupon removed")
}
