package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

// CartService exposes the owner-scoped cart aggregate.
type CartService interface {
	GetCart(ctx context.Context, userID string) (CartView, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error)
	UpdateItem(ctx context.Context, cmd UpdateItemCommand) (CartView, error)
	RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (CartView, error)
	ApplyCoupon(ctx context.Context, userID, code string) (CartView, error)
	RemoveCoupon(ctx context.Context, userID string) (CartView, error)
}

// CheckoutService converts a cart into an immutable order.
type CheckoutService interface {
	Checkout(ctx context.Context, cmd CheckoutCommand) (OrderView, error)
}

// OrderService governs order reads and lifecycle transitions.
type OrderService interface {
	ListOrders(ctx context.Context, userID string, filter repositories.ListFilter) (repositories.Page[domain.Order], error)
	GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (OrderView, error)
	Cancel(ctx context.Context, userID string, orderID uuid.UUID) (OrderView, error)

	AdminListOrders(ctx context.Context, filter repositories.OrderListFilter) (repositories.Page[domain.Order], error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (OrderView, error)
}

// PaymentService initialises payments and reconciles provider callbacks.
type PaymentService interface {
	Initialize(ctx context.Context, cmd InitializePaymentCommand) (PaymentInitView, error)
	Reconcile(ctx context.Context, cmd ReconcileCommand) (domain.Payment, error)
	Refund(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error)
}

// CouponAdminService exposes coupon management for the admin surface.
type CouponAdminService interface {
	ListCoupons(ctx context.Context, filter repositories.ListFilter) (repositories.Page[domain.Coupon], error)
	CreateCoupon(ctx context.Context, cmd UpsertCouponCommand) (domain.Coupon, error)
	UpdateCoupon(ctx context.Context, couponID uuid.UUID, cmd UpsertCouponCommand) (domain.Coupon, error)
	DeleteCoupon(ctx context.Context, couponID uuid.UUID) error
}

// CatalogService exposes public catalog reads and admin stock adjustment.
type CatalogService interface {
	ListProducts(ctx context.Context, filter repositories.ProductListFilter) (repositories.Page[ProductView], error)
	GetProduct(ctx context.Context, productID uuid.UUID) (ProductView, error)
	AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (domain.ProductVariant, error)
}

// AddressService manages owner-scoped shipping addresses.
type AddressService interface {
	ListAddresses(ctx context.Context, userID string) ([]domain.Address, error)
	CreateAddress(ctx context.Context, cmd UpsertAddressCommand) (domain.Address, error)
	UpdateAddress(ctx context.Context, addressID uuid.UUID, cmd UpsertAddressCommand) (domain.Address, error)
	DeleteAddress(ctx context.Context, userID string, addressID uuid.UUID) error
}

// AddItemCommand adds a variant to the owner's cart, merging quantities when
// the variant is already present.
type AddItemCommand struct {
	UserID    string
	VariantID uuid.UUID
	Quantity  int
}

// UpdateItemCommand replaces a cart line's quantity.
type UpdateItemCommand struct {
	UserID   string
	ItemID   uuid.UUID
	Quantity int
}

// CheckoutCommand turns the owner's cart into an order shipped to the given
// address.
type CheckoutCommand struct {
	UserID    string
	AddressID uuid.UUID
	Notes     string
}

// InitializePaymentCommand opens a payment against an order.
type InitializePaymentCommand struct {
	UserID   string
	OrderID  uuid.UUID
	Provider string
	Email    string
}

// ReconcileCommand carries a provider callback.
type ReconcileCommand struct {
	Reference   string
	Status      string
	Amount      domain.Money
	Currency    string
	ProviderRef string
	Payload     []byte
}

// UpsertCouponCommand creates or updates a coupon.
type UpsertCouponCommand struct {
	Code           string
	Kind           string
	Value          domain.Money
	MinOrderAmount *domain.Money
	StartsAt       time.Time
	ExpiresAt      time.Time
	MaxUses        *int
	Active         bool
}

// UpsertAddressCommand creates or updates an address.
type UpsertAddressCommand struct {
	UserID    string
	Label     string
	Recipient string
	Phone     string
	Line1     string
	Line2     string
	City      string
	State     string
	Country   string
	IsDefault bool
}

// CartItemView is a cart line with its current catalog pricing.
type CartItemView struct {
	ID         uuid.UUID    `json:"id"`
	VariantID  uuid.UUID    `json:"variantId"`
	ProductID  uuid.UUID    `json:"productId"`
	Name       string       `json:"name"`
	SKU        string       `json:"sku"`
	Color      string       `json:"color,omitempty"`
	Size       string       `json:"size,omitempty"`
	Quantity   int          `json:"quantity"`
	UnitPrice  domain.Money `json:"unitPrice"`
	TotalPrice domain.Money `json:"totalPrice"`
}

// CartCouponView describes the coupon attached to a cart.
type CartCouponView struct {
	Code         string            `json:"code"`
	Kind         domain.CouponKind `json:"kind"`
	Discount     domain.Money      `json:"discount"`
	FreeShipping bool              `json:"freeShipping"`
}

// CartView is the computed read-through view over a cart. Totals are derived
// on every read and never persisted.
type CartView struct {
	ID          uuid.UUID       `json:"id"`
	Items       []CartItemView  `json:"items"`
	Coupon      *CartCouponView `json:"coupon,omitempty"`
	ItemCount   int             `json:"itemCount"`
	Subtotal    domain.Money    `json:"subtotal"`
	Discount    domain.Money    `json:"discount"`
	ShippingFee domain.Money    `json:"shippingFee"`
	VAT         domain.Money    `json:"vat"`
	Total       domain.Money    `json:"total"`
	ExpiresAt   time.Time       `json:"expiresAt"`
}

// OrderView couples an order with its frozen items.
type OrderView struct {
	Order domain.Order
	Items []domain.OrderItem
}

// PaymentInitView is returned from payment initialisation.
type PaymentInitView struct {
	Payment     domain.Payment
	RedirectURL string
	ExpiresAt   time.Time
}

// VariantView is a variant with its effective price.
type VariantView struct {
	domain.ProductVariant
	UnitPrice domain.Money
}

// ProductView is a product with its variants.
type ProductView struct {
	domain.Product
	Variants []VariantView
}

// Clock yields the current time; services take it injected for testing.
type Clock func() time.Time

// Logger is the event callback services emit structured logs through.
type Logger func(ctx context.Context, event string, fields map[string]any)
