package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

// CheckoutServiceDeps wires the checkout service.
type CheckoutServiceDeps struct {
	Store      repositories.Registry
	Coupons    *couponService
	Calculator *Calculator
	Rater      ShippingRater
	Clock      Clock
	Logger     Logger
	// OrderNumber mints a unique customer-facing order number. Defaults to
	// a ULID-based generator.
	OrderNumber func() string
}

type checkoutService struct {
	store       repositories.Registry
	coupons     *couponService
	calc        *Calculator
	rater       ShippingRater
	clock       Clock
	logger      Logger
	orderNumber func() string
}

// NewCheckoutService validates deps and returns the checkout service.
func NewCheckoutService(deps CheckoutServiceDeps) (*checkoutService, error) {
	if deps.Store == nil {
		return nil, errors.New("checkout service: store is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("checkout service: coupon service is required")
	}
	if deps.Calculator == nil {
		return nil, errors.New("checkout service: calculator is required")
	}
	if deps.Rater == nil {
		deps.Rater = FlatShippingRater{Fee: deps.Calculator.FlatShippingFee()}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	if deps.OrderNumber == nil {
		deps.OrderNumber = defaultOrderNumber(deps.Clock)
	}
	return &checkoutService{
		store:       deps.Store,
		coupons:     deps.Coupons,
		calc:        deps.Calculator,
		rater:       deps.Rater,
		clock:       deps.Clock,
		logger:      deps.Logger,
		orderNumber: deps.OrderNumber,
	}, nil
}

func defaultOrderNumber(clock Clock) func() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(clock().UnixNano())), 0)
	return func() string {
		return "ZC-" + ulid.MustNew(ulid.Timestamp(clock()), entropy).String()
	}
}

// Checkout converts the owner's cart into an order inside a single
// transaction. Prices are re-read from the catalog, the coupon is
// re-validated, stock is decremented conditionally per line, the coupon
// usage is consumed, and the cart is emptied. Any failure rolls the whole
// thing back.
func (s *checkoutService) Checkout(ctx context.Context, cmd CheckoutCommand) (OrderView, error) {
	if cmd.UserID == "" {
		return OrderView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if cmd.AddressID == uuid.Nil {
		return OrderView{}, fmt.Errorf("%w: address id is required", ErrInvalidInput)
	}

	var view OrderView
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock()

		address, err := s.store.Addresses().FindForOwner(ctx, cmd.AddressID, cmd.UserID)
		if err != nil {
			return translateRepoError(err, ErrAddressNotFound)
		}

		cart, err := s.store.Carts().FindByOwner(ctx, cmd.UserID)
		if err != nil {
			return translateRepoError(err, ErrCartEmpty)
		}
		if cart.Expired(now) {
			return ErrCartEmpty
		}
		lines, err := s.store.Carts().Lines(ctx, cart.ID)
		if err != nil {
			return translateRepoError(err, ErrCartEmpty)
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}
		subtotal := linesSubtotal(lines)

		var (
			coupon   domain.Coupon
			discount domain.Money
			waive    bool
		)
		hasCoupon := cart.CouponID != nil
		if hasCoupon {
			coupon, err = s.store.Coupons().FindByID(ctx, *cart.CouponID)
			if err != nil {
				return translateRepoError(err, ErrCouponNotFound)
			}
			if err := s.coupons.Check(coupon, subtotal); err != nil {
				return err
			}
			discount, waive = Discount(coupon, subtotal)
		}

		shipping, err := s.rater.Rate(ctx, lines)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		quote, err := s.calc.Quote(subtotal, discount, shipping, waive)
		if err != nil {
			return err
		}

		order := domain.Order{
			ID:          uuid.New(),
			OrderNumber: s.orderNumber(),
			UserID:      cmd.UserID,
			Status:      domain.OrderStatusPending,
			Subtotal:    quote.Subtotal,
			Discount:    quote.Discount,
			ShippingFee: quote.ShippingFee,
			VAT:         quote.VAT,
			Total:       quote.Total,
			Notes:       cmd.Notes,
			Shipping: domain.ShippingSnapshot{
				Recipient: address.Recipient,
				Phone:     address.Phone,
				Line1:     address.Line1,
				Line2:     address.Line2,
				City:      address.City,
				State:     address.State,
				Country:   address.Country,
			},
		}
		if hasCoupon {
			order.CouponCode = coupon.Code
		}

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, domain.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				VariantID:   line.Item.VariantID,
				ProductName: line.ProductName,
				SKU:         line.SKU,
				Color:       line.Color,
				Size:        line.Size,
				Quantity:    line.Item.Quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  line.Subtotal(),
			})
		}

		inserted, err := s.store.Orders().Insert(ctx, order, items)
		if err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}

		for _, line := range lines {
			ok, err := s.store.Catalog().DecrementStock(ctx, line.Item.VariantID, line.Item.Quantity)
			if err != nil {
				return translateRepoError(err, ErrVariantNotFound)
			}
			if !ok {
				available := line.Stock
				if variant, verr := s.store.Catalog().FindVariant(ctx, line.Item.VariantID); verr == nil {
					available = variant.StockQuantity
				}
				return &InsufficientStockError{
					VariantID: line.Item.VariantID,
					Requested: line.Item.Quantity,
					Available: available,
				}
			}
		}

		if hasCoupon {
			ok, err := s.store.Coupons().IncrementUsage(ctx, coupon.ID)
			if err != nil {
				return translateRepoError(err, ErrCouponNotFound)
			}
			if !ok {
				return ErrCouponExhausted
			}
		}

		if err := s.store.Carts().ClearItems(ctx, cart.ID); err != nil {
			return translateRepoError(err, ErrCartEmpty)
		}
		if hasCoupon {
			if err := s.store.Carts().SetCoupon(ctx, cart.ID, nil); err != nil {
				return translateRepoError(err, ErrCouponNotFound)
			}
		}

		view = OrderView{Order: inserted, Items: items}
		return nil
	})
	if err != nil {
		return OrderView{}, err
	}
	s.logger(ctx, "checkout.completed", map[string]any{
		"order_id":     view.Order.ID.String(),
		"order_number": view.Order.OrderNumber,
		"total":        view.Order.Total,
	})
	return view, nil
}
