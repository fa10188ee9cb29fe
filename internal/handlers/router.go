package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zuricart/api/internal/platform/auth"
	"github.com/zuricart/api/internal/platform/observability"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Logger         *zap.Logger
	Authenticator  *auth.Authenticator
	Health         *HealthHandler
	Catalog        *CatalogHandler
	Addresses      *AddressHandler
	Cart           *CartHandler
	Orders         *OrderHandler
	Admin          *AdminHandler
	Webhooks       *WebhookHandler
	RequestTimeout time.Duration
}

// NewRouter assembles the chi router: public catalog and health, the
// authenticated storefront, the admin surface, and unauthenticated but
// HMAC-verified webhooks.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.Middleware(deps.Logger))
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.Get("/healthz", deps.Health.Live)
	r.Get("/readyz", deps.Health.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", deps.Catalog.List)
		r.Get("/products/{productID}", deps.Catalog.Get)

		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticator.RequireAuth())

			r.Route("/me/addresses", func(r chi.Router) {
				r.Get("/", deps.Addresses.List)
				r.Post("/", deps.Addresses.Create)
				r.Put("/{addressID}", deps.Addresses.Update)
				r.Delete("/{addressID}", deps.Addresses.Delete)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", deps.Cart.Get)
				r.Post("/items", deps.Cart.AddItem)
				r.Put("/items/{itemID}", deps.Cart.UpdateItem)
				r.Delete("/items/{itemID}", deps.Cart.RemoveItem)
				r.Post("/coupon", deps.Cart.ApplyCoupon)
				r.Delete("/coupon", deps.Cart.RemoveCoupon)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", deps.Orders.Create)
				r.Get("/", deps.Orders.List)
				r.Get("/{orderID}", deps.Orders.Get)
				r.Put("/{orderID}/cancel", deps.Orders.Cancel)
				r.Post("/{orderID}/payments", deps.Orders.InitializePayment)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.Authenticator.RequireAuth(auth.RoleAdmin))

			r.Get("/orders", deps.Admin.ListOrders)
			r.Put("/orders/{orderID}/status", deps.Admin.UpdateOrderStatus)

			r.Get("/coupons", deps.Admin.ListCoupons)
			r.Post("/coupons", deps.Admin.CreateCoupon)
			r.Put("/coupons/{couponID}", deps.Admin.UpdateCoupon)
			r.Delete("/coupons/{couponID}", deps.Admin.DeleteCoupon)

			r.Put("/variants/{variantID}/stock", deps.Admin.AdjustStock)
			r.Put("/payments/{paymentID}/refund", deps.Admin.RefundPayment)
		})

		r.Post("/webhooks/payments/opay", deps.Webhooks.PaymentCallback)
	})

	return r
}
