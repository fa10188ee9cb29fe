package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

var (
	// ErrInvalidInput flags a malformed or missing argument.
	ErrInvalidInput = errors.New("services: invalid input")
	// ErrUnavailable flags a transient storage failure worth retrying.
	ErrUnavailable = errors.New("services: backend unavailable")

	// ErrVariantNotFound flags a reference to an unknown or inactive variant.
	ErrVariantNotFound = errors.New("catalog: variant not found")
	// ErrProductNotFound flags a reference to an unknown product.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrInsufficientStock flags a quantity beyond what the variant holds.
	ErrInsufficientStock = errors.New("catalog: insufficient stock")

	// ErrCartItemNotFound flags a reference to an item outside the cart.
	ErrCartItemNotFound = errors.New("cart: item not found")
	// ErrCartEmpty flags a checkout attempt against an empty or expired cart.
	ErrCartEmpty = errors.New("cart: empty")

	// ErrAddressNotFound flags a reference to an address the caller does not own.
	ErrAddressNotFound = errors.New("address: not found")

	// ErrCouponNotFound flags an unknown coupon code.
	ErrCouponNotFound = errors.New("coupon: not found")
	// ErrCouponInactive flags a disabled coupon.
	ErrCouponInactive = errors.New("coupon: inactive")
	// ErrCouponNotStarted flags a coupon used before its window opens.
	ErrCouponNotStarted = errors.New("coupon: not started")
	// ErrCouponExpired flags a coupon used after its window closed.
	ErrCouponExpired = errors.New("coupon: expired")
	// ErrCouponExhausted flags a coupon whose usage cap is spent.
	ErrCouponExhausted = errors.New("coupon: exhausted")
	// ErrCouponMinimumNotMet flags a subtotal below the coupon's floor.
	ErrCouponMinimumNotMet = errors.New("coupon: minimum order amount not met")
	// ErrCouponCodeTaken flags a duplicate coupon code on create.
	ErrCouponCodeTaken = errors.New("coupon: code already exists")

	// ErrOrderNotFound flags a reference to an unknown or foreign order.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderNotCancellable flags a cancel attempt past the allowed statuses.
	ErrOrderNotCancellable = errors.New("order: not cancellable")
	// ErrOrderInvalidStatus flags an unknown status literal.
	ErrOrderInvalidStatus = errors.New("order: invalid status")
	// ErrOrderTransitionNotAllowed flags a move outside the lifecycle graph.
	ErrOrderTransitionNotAllowed = errors.New("order: transition not allowed")
	// ErrOrderNotPayable flags a payment attempt against a settled order.
	ErrOrderNotPayable = errors.New("order: not payable")

	// ErrPaymentNotFound flags an unknown payment or callback reference.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrPaymentAmountMismatch flags a callback whose amount or currency
	// disagrees with the recorded payment.
	ErrPaymentAmountMismatch = errors.New("payment: amount mismatch")
	// ErrPaymentNotRefundable flags a refund against a non-successful payment.
	ErrPaymentNotRefundable = errors.New("payment: not refundable")
	// ErrPaymentAlreadyRefunded flags a callback replayed against a payment
	// that was refunded in the meantime.
	ErrPaymentAlreadyRefunded = errors.New("payment: already refunded")
)

// InsufficientStockError reports how much of a variant remains when a
// requested quantity cannot be honoured.
type InsufficientStockError struct {
	VariantID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("catalog: insufficient stock for variant %s: requested %d, available %d", e.VariantID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// MinimumNotMetError carries the subtotal floor a coupon demands.
type MinimumNotMetError struct {
	Code     string
	Required domain.Money
	Subtotal domain.Money
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("coupon: %s requires a minimum order amount of %d, got %d", e.Code, e.Required, e.Subtotal)
}

func (e *MinimumNotMetError) Unwrap() error { return ErrCouponMinimumNotMet }

// translateRepoError folds storage failures into the service vocabulary.
// notFound substitutes the area-specific sentinel for missing rows.
func translateRepoError(err, notFound error) error {
	var re repositories.RepositoryError
	if errors.As(err, &re) {
		switch {
		case re.IsNotFound():
			return notFound
		case re.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}
