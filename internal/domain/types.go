package domain

import (
	"time"

	"github.com/google/uuid"
)

// Money amounts are integer minor units (kobo for NGN). Arithmetic on totals
// happens in the pricing calculator so repeated additions never accumulate
// fractional drift.
type Money = int64

// Product is a catalog entry holding the base price shared by its variants.
type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	BasePrice   Money
	Currency    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductVariant is a purchasable configuration (colour x size) of a product.
// Stock is decremented only inside the checkout transaction and restored only
// inside the cancellation transaction.
type ProductVariant struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	SKU           string
	Color         string
	Size          string
	PriceModifier Money
	StockQuantity int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UnitPrice is the effective price of the variant: product base price plus
// the variant's modifier.
func (v ProductVariant) UnitPrice(basePrice Money) Money {
	price := basePrice + v.PriceModifier
	if price < 0 {
		return 0
	}
	return price
}

// Address is an owner-scoped shipping destination. Orders copy the fields
// they need at checkout, so later edits never touch historical orders.
type Address struct {
	ID        uuid.UUID
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
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cart holds at most one open cart per owner. Expiry is enforced lazily on
// read and mutation.
type Cart struct {
	ID        uuid.UUID
	UserID    string
	CouponID  *uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the cart's window has elapsed at the given instant.
func (c Cart) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// CartItem is a line in a cart. Quantity is validated against variant stock
// on every mutation; a (cart, variant) pair is unique.
type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	VariantID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is the read-through view of a cart item joined with its current
// catalog data. Prices come from the catalog on every read and are never
// stored on the cart.
type CartLine struct {
	Item        CartItem
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Color       string
	Size        string
	UnitPrice   Money
	Stock       int
}

// Subtotal is the line's contribution to the cart subtotal.
func (l CartLine) Subtotal() Money {
	if l.Item.Quantity <= 0 {
		return 0
	}
	return l.UnitPrice * Money(l.Item.Quantity)
}

// Order is the immutable result of a checkout. Monetary fields and the
// address snapshot never change after creation; only Status moves.
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	UserID      string
	Status      OrderStatus
	Subtotal    Money
	Discount    Money
	ShippingFee Money
	VAT         Money
	Total       Money
	CouponCode  string
	Notes       string
	Shipping    ShippingSnapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShippingSnapshot freezes the destination address onto the order.
type ShippingSnapshot struct {
	Recipient string
	Phone     string
	Line1     string
	Line2     string
	City      string
	State     string
	Country   string
}

// OrderItem freezes a purchased line at order time, independent of later
// catalog changes.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	VariantID   uuid.UUID
	ProductName string
	SKU         string
	Color       string
	Size        string
	Quantity    int
	UnitPrice   Money
	TotalPrice  Money
	CreatedAt   time.Time
}

// PaymentStatus enumerates the states a payment record moves through.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment links an order to a provider transaction. At most one SUCCESS
// payment may exist per order.
type Payment struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Reference   string
	Provider    string
	Amount      Money
	Currency    string
	Status      PaymentStatus
	ProviderRef string
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentEvent stores a raw provider callback payload for audit.
type PaymentEvent struct {
	ID         uuid.UUID
	PaymentID  uuid.UUID
	Payload    []byte
	ReceivedAt time.Time
}
