package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/zuricart/api/internal/platform/httpx"
	"github.com/zuricart/api/internal/platform/pagination"
	"github.com/zuricart/api/internal/repositories"
	"github.com/zuricart/api/internal/services"
)

// OrderHandler serves checkout and the authenticated user's orders.
type OrderHandler struct {
	checkout services.CheckoutService
	orders   services.OrderService
	payments services.PaymentService
	defaults pagination.Defaults
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(checkout services.CheckoutService, orders services.OrderService, payments services.PaymentService, defaults pagination.Defaults) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders, payments: payments, defaults: defaults}
}

// Create responds to POST /orders by checking the cart out.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	var req struct {
		AddressID string `json:"addressId"`
		Notes     string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_input", "malformed addressId", http.StatusBadRequest))
		return
	}
	view, err := h.checkout.Checkout(r.Context(), services.CheckoutCommand{
		UserID:    identity.UserID,
		AddressID: addressID,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, toOrderResponse(view.Order, view.Items), "order created")
}

// List responds to GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	params := pagination.FromRequest(r, h.defaults)
	page, err := h.orders.ListOrders(r.Context(), identity.UserID, repositories.ListFilter{
		Offset: params.Offset(),
		Limit:  params.Limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]orderResponse, 0, len(page.Items))
	for _, order := range page.Items {
		items = append(items, toOrderResponse(order, nil))
	}
	httpx.WriteSuccessWithMeta(w, http.StatusOK, items, "", params.Meta(page.Total))
}

// Get responds to GET /orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	view, err := h.orders.GetOrder(r.Context(), identity.UserID, orderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toOrderResponse(view.Order, view.Items), "")
}

// Cancel responds to PUT /orders/{orderID}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	view, err := h.orders.Cancel(r.Context(), identity.UserID, orderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toOrderResponse(view.Order, view.Items), "order cancelled")
}

// InitializePayment responds to POST /orders/{orderID}/payments.
func (h *OrderHandler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	var req struct {
		Provider string `json:"provider"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.payments.Initialize(r.Context(), services.InitializePaymentCommand{
		UserID:   identity.UserID,
		OrderID:  orderID,
		Provider: req.Provider,
		Email:    identity.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, toPaymentResponse(view.Payment, view.RedirectURL), "payment initialized")
}
