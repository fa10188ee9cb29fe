package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation
// used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork groups repository operations into a transactional boundary.
// Every repository call made with the context passed to fn joins the same
// transaction.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Registry exposes typed repository accessors for dependency injection.
type Registry interface {
	Catalog() CatalogRepository
	Addresses() AddressRepository
	Carts() CartRepository
	Coupons() CouponRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Health() HealthRepository
	UnitOfWork
}

// Page is an offset-paginated result set.
type Page[T any] struct {
	Items []T
	Total int
}

// ListFilter bounds offset-paginated queries.
type ListFilter struct {
	Offset int
	Limit  int
}

// ProductListFilter narrows catalog listings.
type ProductListFilter struct {
	ListFilter
	ActiveOnly bool
	Search     string
}

// OrderListFilter narrows order listings.
type OrderListFilter struct {
	ListFilter
	UserID string
	Status *domain.OrderStatus
}

// CatalogRepository reads products and variants and owns stock mutations.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductListFilter) (Page[domain.Product], error)
	FindProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	VariantsByProduct(ctx context.Context, productID uuid.UUID) ([]domain.ProductVariant, error)
	FindVariant(ctx context.Context, variantID uuid.UUID) (domain.ProductVariant, error)

	// DecrementStock atomically subtracts quantity where enough stock
	// remains. It reports false, with no mutation, when stock would go
	// negative; concurrent checkouts serialise on this row write.
	DecrementStock(ctx context.Context, variantID uuid.UUID, quantity int) (bool, error)
	// RestoreStock adds quantity back onto the variant.
	RestoreStock(ctx context.Context, variantID uuid.UUID, quantity int) error
	// AdjustStock applies a signed delta, failing on a negative result.
	AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (domain.ProductVariant, error)
}

// AddressRepository persists owner-scoped shipping addresses.
type AddressRepository interface {
	ListByOwner(ctx context.Context, userID string) ([]domain.Address, error)
	FindForOwner(ctx context.Context, addressID uuid.UUID, userID string) (domain.Address, error)
	Insert(ctx context.Context, address domain.Address) (domain.Address, error)
	Update(ctx context.Context, address domain.Address) (domain.Address, error)
	Delete(ctx context.Context, addressID uuid.UUID, userID string) error
}

// CartRepository persists carts and their line items.
type CartRepository interface {
	FindByOwner(ctx context.Context, userID string) (domain.Cart, error)
	Insert(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	SetCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error
	SetExpiry(ctx context.Context, cartID uuid.UUID, expiresAt time.Time) error

	Lines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (domain.CartItem, error)
	FindItemByVariant(ctx context.Context, cartID, variantID uuid.UUID) (domain.CartItem, error)
	InsertItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

// CouponRepository persists discount codes.
type CouponRepository interface {
	FindByID(ctx context.Context, couponID uuid.UUID) (domain.Coupon, error)
	FindByCode(ctx context.Context, code string) (domain.Coupon, error)
	List(ctx context.Context, filter ListFilter) (Page[domain.Coupon], error)
	Insert(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	Update(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	Delete(ctx context.Context, couponID uuid.UUID) error

	// IncrementUsage bumps used_count by one where the cap allows it,
	// reporting false when the coupon is already exhausted.
	IncrementUsage(ctx context.Context, couponID uuid.UUID) (bool, error)
}

// OrderRepository persists orders and their immutable items.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order, items []domain.OrderItem) (domain.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	FindForOwner(ctx context.Context, orderID uuid.UUID, userID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) (Page[domain.Order], error)
	Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
}

// PaymentRepository persists payments and their audit events.
type PaymentRepository interface {
	Insert(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	FindByID(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error)
	FindByReference(ctx context.Context, reference string) (domain.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error)
	HasSuccessForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	// Settle applies a callback outcome as a conditional write: a payment
	// that already reached SUCCESS or REFUNDED is left untouched and Settle
	// reports false. Concurrent callback deliveries race on this condition
	// rather than on a read-then-write.
	Settle(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus, providerRef string, paidAt *time.Time) (bool, error)
	// MarkRefunded moves a SUCCESS payment to REFUNDED, reporting false when
	// the payment is not currently refundable.
	MarkRefunded(ctx context.Context, paymentID uuid.UUID) (bool, error)
	InsertEvent(ctx context.Context, event domain.PaymentEvent) error
}

// HealthRepository answers readiness probes.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
