package handlers

import (
	"net/http"
	"strings"
	"time"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/httpx"
	"github.com/zuricart/api/internal/platform/pagination"
	"github.com/zuricart/api/internal/repositories"
	"github.com/zuricart/api/internal/services"
)

// AdminHandler serves the admin surface: order lifecycle, coupon CRUD,
// stock corrections and refunds. Routes mounting it must require the admin
// role.
type AdminHandler struct {
	orders   services.OrderService
	coupons  services.CouponAdminService
	catalog  services.CatalogService
	payments services.PaymentService
	defaults pagination.Defaults
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(orders services.OrderService, coupons services.CouponAdminService, catalog services.CatalogService, payments services.PaymentService, defaults pagination.Defaults) *AdminHandler {
	return &AdminHandler{orders: orders, coupons: coupons, catalog: catalog, payments: payments, defaults: defaults}
}

// ListOrders responds to GET /admin/orders.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r, h.defaults)
	filter := repositories.OrderListFilter{
		ListFilter: repositories.ListFilter{Offset: params.Offset(), Limit: params.Limit},
		UserID:     strings.TrimSpace(r.URL.Query().Get("userId")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, ok := domain.ParseOrderStatus(raw)
		if !ok {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_status", "unknown order status", http.StatusBadRequest))
			return
		}
		filter.Status = &status
	}
	page, err := h.orders.AdminListOrders(r.Context(), filter)
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

// UpdateOrderStatus responds to PUT /admin/orders/{orderID}/status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.orders.AdminUpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toOrderResponse(view.Order, view.Items), "status updated")
}

type couponRequest struct {
	Code           string        `json:"code"`
	Kind           string        `json:"kind"`
	Value          domain.Money  `json:"value"`
	MinOrderAmount *domain.Money `json:"minOrderAmount"`
	StartsAt       time.Time     `json:"startsAt"`
	ExpiresAt      time.Time     `json:"expiresAt"`
	MaxUses        *int          `json:"maxUses"`
	Active         bool          `json:"active"`
}

func (req couponRequest) command() services.UpsertCouponCommand {
	return services.UpsertCouponCommand{
		Code:           req.Code,
		Kind:           req.Kind,
		Value:          req.Value,
		MinOrderAmount: req.MinOrderAmount,
		StartsAt:       req.StartsAt,
		ExpiresAt:      req.ExpiresAt,
		MaxUses:        req.MaxUses,
		Active:         req.Active,
	}
}

// ListCoupons responds to GET /admin/coupons.
func (h *AdminHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r, h.defaults)
	page, err := h.coupons.ListCoupons(r.Context(), repositories.ListFilter{
		Offset: params.Offset(),
		Limit:  params.Limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]couponResponse, 0, len(page.Items))
	for _, coupon := range page.Items {
		items = append(items, toCouponResponse(coupon))
	}
	httpx.WriteSuccessWithMeta(w, http.StatusOK, items, "", params.Meta(page.Total))
}

// CreateCoupon responds to POST /admin/coupons.
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	coupon, err := h.coupons.CreateCoupon(r.Context(), req.command())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, toCouponResponse(coupon), "coupon created")
}

// UpdateCoupon responds to PUT /admin/coupons/{couponID}.
func (h *AdminHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, ok := pathUUID(w, r, "couponID")
	if !ok {
		return
	}
	var req couponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	coupon, err := h.coupons.UpdateCoupon(r.Context(), couponID, req.command())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toCouponResponse(coupon), "coupon updated")
}

// DeleteCoupon responds to DELETE /admin/coupons/{couponID}.
func (h *AdminHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, ok := pathUUID(w, r, "couponID")
	if !ok {
		return
	}
	if err := h.coupons.DeleteCoupon(r.Context(), couponID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, nil, "coupon deleted")
}

// AdjustStock responds to PUT /admin/variants/{variantID}/stock.
func (h *AdminHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	variantID, ok := pathUUID(w, r, "variantID")
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	variant, err := h.catalog.AdjustStock(r.Context(), variantID, req.Delta)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, variantResponse{
		ID:            variant.ID.String(),
		SKU:           variant.SKU,
		Color:         variant.Color,
		Size:          variant.Size,
		StockQuantity: variant.StockQuantity,
		Active:        variant.Active,
	}, "stock adjusted")
}

// RefundPayment responds to PUT /admin/payments/{paymentID}/refund.
func (h *AdminHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathUUID(w, r, "paymentID")
	if !ok {
		return
	}
	payment, err := h.payments.Refund(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toPaymentResponse(payment, ""), "payment refunded")
}
