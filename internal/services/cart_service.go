package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

// CartServiceDeps wires the cart service.
type CartServiceDeps struct {
	Store      repositories.Registry
	Coupons    *couponService
	Calculator *Calculator
	Rater      ShippingRater
	TTL        time.Duration
	Clock      Clock
	Logger     Logger
}

type cartService struct {
	store   repositories.Registry
	coupons *couponService
	calc    *Calculator
	rater   ShippingRater
	ttl     time.Duration
	clock   Clock
	logger  Logger
}

// NewCartService validates deps and returns the cart service.
func NewCartService(deps CartServiceDeps) (*cartService, error) {
	if deps.Store == nil {
		return nil, errors.New("cart service: store is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("cart service: coupon service is required")
	}
	if deps.Calculator == nil {
		return nil, errors.New("cart service: calculator is required")
	}
	if deps.Rater == nil {
		deps.Rater = FlatShippingRater{Fee: deps.Calculator.FlatShippingFee()}
	}
	if deps.TTL <= 0 {
		deps.TTL = 72 * time.Hour
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &cartService{
		store:   deps.Store,
		coupons: deps.Coupons,
		calc:    deps.Calculator,
		rater:   deps.Rater,
		ttl:     deps.TTL,
		clock:   deps.Clock,
		logger:  deps.Logger,
	}, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (CartView, error) {
	cart, err := s.openCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error) {
	if cmd.Quantity < 1 {
		return CartView{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	variant, err := s.store.Catalog().FindVariant(ctx, cmd.VariantID)
	if err != nil {
		return CartView{}, translateRepoError(err, ErrVariantNotFound)
	}
	if !variant.Active {
		return CartView{}, ErrVariantNotFound
	}
	cart, err := s.openCart(ctx, cmd.UserID)
	if err != nil {
		return CartView{}, err
	}

	// Merge with an existing line for the same variant; the merged quantity
	// is what gets checked against stock.
	target := cmd.Quantity
	existing, err := s.store.Carts().FindItemByVariant(ctx, cart.ID, cmd.VariantID)
	merged := err == nil
	if err != nil {
		if translated := translateRepoError(err, nil); translated != nil {
			return CartView{}, translated
		}
	} else {
		target += existing.Quantity
	}
	if target > variant.StockQuantity {
		return CartView{}, &InsufficientStockError{VariantID: variant.ID, Requested: target, Available: variant.StockQuantity}
	}

	if merged {
		if err := s.store.Carts().UpdateItemQuantity(ctx, existing.ID, target); err != nil {
			return CartView{}, translateRepoError(err, ErrCartItemNotFound)
		}
	} else {
		item := domain.CartItem{ID: uuid.New(), CartID: cart.ID, VariantID: cmd.VariantID, Quantity: target}
		if _, err := s.store.Carts().InsertItem(ctx, item); err != nil {
			return CartView{}, translateRepoError(err, ErrCartItemNotFound)
		}
	}
	cart, err = s.extend(ctx, cart)
	if err != nil {
		return CartView{}, err
	}
	s.logger(ctx, "cart.item_added", map[string]any{"cart_id": cart.ID.String(), "variant_id": cmd.VariantID.String(), "quantity": target})
	return s.view(ctx, cart)
}

func (s *cartService) UpdateItem(ctx context.Context, cmd UpdateItemCommand) (CartView, error) {
	if cmd.Quantity < 1 {
		return CartView{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	cart, err := s.openCart(ctx, cmd.UserID)
	if err != nil {
		return CartView{}, err
	}
	item, err := s.store.Carts().FindItem(ctx, cart.ID, cmd.ItemID)
	if err != nil {
		return CartView{}, translateRepoError(err, ErrCartItemNotFound)
	}
	variant, err := s.store.Catalog().FindVariant(ctx, item.VariantID)
	if err != nil {
		return CartView{}, translateRepoError(err, ErrVariantNotFound)
	}
	if cmd.Quantity > variant.StockQuantity {
		return CartView{}, &InsufficientStockError{VariantID: variant.ID, Requested: cmd.Quantity, Available: variant.StockQuantity}
	}
	if err := s.store.Carts().UpdateItemQuantity(ctx, item.ID, cmd.Quantity); err != nil {
		return CartView{}, translateRepoError(err, ErrCartItemNotFound)
	}
	cart, err = s.extend(ctx, cart)
	if err != nil {
		return CartView{}, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (CartView, error) {
	cart, err := s.openCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	item, err := s.store.Carts().FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return CartView{}, translateRepoError(err, ErrCartItemNotFound)
	}
	if err := s.store.Carts().DeleteItem(ctx, item.ID); err != nil {
		return CartView{}, translateRepoError(err, ErrCartItemNotFound)
	}
	return s.view(ctx, cart)
}

func (s *cartService) ApplyCoupon(ctx context.Context, userID, code string) (CartView, error) {
	cart, err := s.openCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.store.Carts().Lines(ctx, cart.ID)
	if err != nil {
		return CartView{}, translateRepoError(err, ErrCartItemNotFound)
	}
	coupon, _, _, err := s.coupons.Resolve(ctx, code, linesSubtotal(lines))
	if err != nil {
		return CartView{}, err
	}
	if err := s.store.Carts().SetCoupon(ctx, cart.ID, &coupon.ID); err != nil {
		return CartView{}, translateRepoError(err, ErrCouponNotFound)
	}
	cart.CouponID = &coupon.ID
	s.logger(ctx, "cart.coupon_applied", map[string]any{"cart_id": cart.ID.String(), "code": coupon.Code})
	return s.view(ctx, cart)
}

func (s *cartService) RemoveCoupon(ctx context.Context, userID string) (CartView, error) {
	cart, err := s.openCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.store.Carts().SetCoupon(ctx, cart.ID, nil); err != nil {
		return CartView{}, translateRepoError(err, ErrCouponNotFound)
	}
	cart.CouponID = nil
	return s.view(ctx, cart)
}

// openCart fetches the owner's cart, creating one when missing and resetting
// one whose window has lapsed. Expiry is enforced here rather than by a
// background sweeper.
func (s *cartService) openCart(ctx context.Context, userID string) (domain.Cart, error) {
	if userID == "" {
		return domain.Cart{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	now := s.clock()
	cart, err := s.store.Carts().FindByOwner(ctx, userID)
	if err != nil {
		if translated := translateRepoError(err, nil); translated != nil {
			return domain.Cart{}, translated
		}
		fresh := domain.Cart{ID: uuid.New(), UserID: userID, ExpiresAt: now.Add(s.ttl)}
		created, err := s.store.Carts().Insert(ctx, fresh)
		if err != nil {
			// A concurrent request may have created the row first.
			var re repositories.RepositoryError
			if errors.As(err, &re) && re.IsConflict() {
				existing, ferr := s.store.Carts().FindByOwner(ctx, userID)
				if ferr != nil {
					return domain.Cart{}, translateRepoError(ferr, ErrCartItemNotFound)
				}
				return existing, nil
			}
			return domain.Cart{}, translateRepoError(err, ErrCartItemNotFound)
		}
		return created, nil
	}
	if cart.Expired(now) {
		if err := s.store.Carts().ClearItems(ctx, cart.ID); err != nil {
			return domain.Cart{}, translateRepoError(err, ErrCartItemNotFound)
		}
		if err := s.store.Carts().SetCoupon(ctx, cart.ID, nil); err != nil {
			return domain.Cart{}, translateRepoError(err, ErrCouponNotFound)
		}
		if err := s.store.Carts().SetExpiry(ctx, cart.ID, now.Add(s.ttl)); err != nil {
			return domain.Cart{}, translateRepoError(err, ErrCartItemNotFound)
		}
		cart.CouponID = nil
		cart.ExpiresAt = now.Add(s.ttl)
		s.logger(ctx, "cart.expired_reset", map[string]any{"cart_id": cart.ID.String()})
	}
	return cart, nil
}

// extend slides the cart's expiry window forward after a mutation.
func (s *cartService) extend(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	expires := s.clock().Add(s.ttl)
	if err := s.store.Carts().SetExpiry(ctx, cart.ID, expires); err != nil {
		return domain.Cart{}, translateRepoError(err, ErrCartItemNotFound)
	}
	cart.ExpiresAt = expires
	return cart, nil
}

// view assembles the computed cart: current catalog prices, coupon discount,
// shipping and VAT. A coupon that no longer validates contributes nothing
// but stays attached; checkout rejects it with the precise reason.
func (s *cartService) view(ctx context.Context, cart domain.Cart) (CartView, error) {
	lines, err := s.store.Carts().Lines(ctx, cart.ID)
	if err != nil {
		return CartView{}, translateRepoError(err, ErrCartItemNotFound)
	}
	subtotal := linesSubtotal(lines)

	var (
		discount   domain.Money
		waive      bool
		couponView *CartCouponView
	)
	if cart.CouponID != nil {
		coupon, err := s.store.Coupons().FindByID(ctx, *cart.CouponID)
		switch {
		case err == nil:
			couponView = &CartCouponView{Code: coupon.Code, Kind: coupon.Kind}
			if s.coupons.Check(coupon, subtotal) == nil {
				discount, waive = Discount(coupon, subtotal)
				couponView.Discount = discount
				couponView.FreeShipping = waive
			}
		case errors.Is(translateRepoError(err, ErrCouponNotFound), ErrCouponNotFound):
			// Deleted since it was applied; drop it silently.
		default:
			return CartView{}, translateRepoError(err, ErrCouponNotFound)
		}
	}

	shipping := domain.Money(0)
	if len(lines) > 0 {
		shipping, err = s.rater.Rate(ctx, lines)
		if err != nil {
			return CartView{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	quote, err := s.calc.Quote(subtotal, discount, shipping, waive)
	if err != nil {
		return CartView{}, err
	}

	items := make([]CartItemView, 0, len(lines))
	count := 0
	for _, line := range lines {
		count += line.Item.Quantity
		items = append(items, CartItemView{
			ID:         line.Item.ID,
			VariantID:  line.Item.VariantID,
			ProductID:  line.ProductID,
			Name:       line.ProductName,
			SKU:        line.SKU,
			Color:      line.Color,
			Size:       line.Size,
			Quantity:   line.Item.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.Subtotal(),
		})
	}
	return CartView{
		ID:          cart.ID,
		Items:       items,
		Coupon:      couponView,
		ItemCount:   count,
		Subtotal:    quote.Subtotal,
		Discount:    quote.Discount,
		ShippingFee: quote.ShippingFee,
		VAT:         quote.VAT,
		Total:       quote.Total,
		ExpiresAt:   cart.ExpiresAt,
	}, nil
}

func linesSubtotal(lines []domain.CartLine) domain.Money {
	var subtotal domain.Money
	for _, line := range lines {
		subtotal += line.Subtotal()
	}
	return subtotal
}
