package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/postgres"
	"github.com/zuricart/api/internal/repositories"
)

// fakeStore is an in-memory repositories.Registry. RunInTx snapshots state
// before the callback and restores it on error, so tests can assert that a
// failed transaction left nothing behind.
type fakeStore struct {
	state fakeState

	txCalls    int
	txFailTrip func() error
}

type fakeState struct {
	products      map[uuid.UUID]domain.Product
	variants      map[uuid.UUID]domain.ProductVariant
	addresses     map[uuid.UUID]domain.Address
	carts         map[string]domain.Cart
	cartItems     map[uuid.UUID]domain.CartItem
	coupons       map[uuid.UUID]domain.Coupon
	orders        map[uuid.UUID]domain.Order
	orderItems    map[uuid.UUID][]domain.OrderItem
	payments      map[uuid.UUID]domain.Payment
	paymentEvents []domain.PaymentEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: fakeState{
		products:   map[uuid.UUID]domain.Product{},
		variants:   map[uuid.UUID]domain.ProductVariant{},
		addresses:  map[uuid.UUID]domain.Address{},
		carts:      map[string]domain.Cart{},
		cartItems:  map[uuid.UUID]domain.CartItem{},
		coupons:    map[uuid.UUID]domain.Coupon{},
		orders:     map[uuid.UUID]domain.Order{},
		orderItems: map[uuid.UUID][]domain.OrderItem{},
		payments:   map[uuid.UUID]domain.Payment{},
	}}
}

func (s *fakeStore) Catalog() repositories.CatalogRepository   { return (*fakeCatalogRepo)(s) }
func (s *fakeStore) Addresses() repositories.AddressRepository { return (*fakeAddressRepo)(s) }
func (s *fakeStore) Carts() repositories.CartRepository        { return (*fakeCartRepo)(s) }
func (s *fakeStore) Coupons() repositories.CouponRepository    { return (*fakeCouponRepo)(s) }
func (s *fakeStore) Orders() repositories.OrderRepository      { return (*fakeOrderRepo)(s) }
func (s *fakeStore) Payments() repositories.PaymentRepository  { return (*fakePaymentRepo)(s) }
func (s *fakeStore) Health() repositories.HealthRepository     { return fakeHealthRepo{} }

func (s *fakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txCalls++
	snapshot := s.state.clone()
	if err := fn(ctx); err != nil {
		s.state = snapshot
		return err
	}
	if s.txFailTrip != nil {
		if err := s.txFailTrip(); err != nil {
			s.state = snapshot
			return err
		}
	}
	return nil
}

func (st fakeState) clone() fakeState {
	out := fakeState{
		products:   map[uuid.UUID]domain.Product{},
		variants:   map[uuid.UUID]domain.ProductVariant{},
		addresses:  map[uuid.UUID]domain.Address{},
		carts:      map[string]domain.Cart{},
		cartItems:  map[uuid.UUID]domain.CartItem{},
		coupons:    map[uuid.UUID]domain.Coupon{},
		orders:     map[uuid.UUID]domain.Order{},
		orderItems: map[uuid.UUID][]domain.OrderItem{},
		payments:   map[uuid.UUID]domain.Payment{},
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.variants {
		out.variants[k] = v
	}
	for k, v := range st.addresses {
		out.addresses[k] = v
	}
	for k, v := range st.carts {
		out.carts[k] = v
	}
	for k, v := range st.cartItems {
		out.cartItems[k] = v
	}
	for k, v := range st.coupons {
		out.coupons[k] = v
	}
	for k, v := range st.orders {
		out.orders[k] = v
	}
	for k, v := range st.orderItems {
		out.orderItems[k] = append([]domain.OrderItem(nil), v...)
	}
	for k, v := range st.payments {
		out.payments[k] = v
	}
	out.paymentEvents = append([]domain.PaymentEvent(nil), st.paymentEvents...)
	return out
}

type fakeCatalogRepo fakeStore

func (r *fakeCatalogRepo) ListProducts(_ context.Context, filter repositories.ProductListFilter) (repositories.Page[domain.Product], error) {
	var items []domain.Product
	for _, p := range r.state.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return repositories.Page[domain.Product]{Items: items, Total: len(items)}, nil
}

func (r *fakeCatalogRepo) FindProduct(_ context.Context, id uuid.UUID) (domain.Product, error) {
	p, ok := r.state.products[id]
	if !ok {
		return domain.Product{}, postgres.NotFound("catalog.find_product")
	}
	return p, nil
}

func (r *fakeCatalogRepo) VariantsByProduct(_ context.Context, productID uuid.UUID) ([]domain.ProductVariant, error) {
	var out []domain.ProductVariant
	for _, v := range r.state.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *fakeCatalogRepo) FindVariant(_ context.Context, id uuid.UUID) (domain.ProductVariant, error) {
	v, ok := r.state.variants[id]
	if !ok {
		return domain.ProductVariant{}, postgres.NotFound("catalog.find_variant")
	}
	return v, nil
}

func (r *fakeCatalogRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) (bool, error) {
	v, ok := r.state.variants[id]
	if !ok {
		return false, postgres.NotFound("catalog.decrement_stock")
	}
	if v.StockQuantity < quantity {
		return false, nil
	}
	v.StockQuantity -= quantity
	r.state.variants[id] = v
	return true, nil
}

func (r *fakeCatalogRepo) RestoreStock(_ context.Context, id uuid.UUID, quantity int) error {
	v, ok := r.state.variants[id]
	if !ok {
		return postgres.NotFound("catalog.restore_stock")
	}
	v.StockQuantity += quantity
	r.state.variants[id] = v
	return nil
}

func (r *fakeCatalogRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) (domain.ProductVariant, error) {
	v, ok := r.state.variants[id]
	if !ok {
		return domain.ProductVariant{}, postgres.NotFound("catalog.adjust_stock")
	}
	if v.StockQuantity+delta < 0 {
		return domain.ProductVariant{}, postgres.NotFound("catalog.adjust_stock")
	}
	v.StockQuantity += delta
	r.state.variants[id] = v
	return v, nil
}

type fakeAddressRepo fakeStore

func (r *fakeAddressRepo) ListByOwner(_ context.Context, userID string) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range r.state.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (r *fakeAddressRepo) FindForOwner(_ context.Context, id uuid.UUID, userID string) (domain.Address, error) {
	a, ok := r.state.addresses[id]
	if !ok || a.UserID != userID {
		return domain.Address{}, postgres.NotFound("addresses.find")
	}
	return a, nil
}

func (r *fakeAddressRepo) Insert(_ context.Context, address domain.Address) (domain.Address, error) {
	r.state.addresses[address.ID] = address
	return address, nil
}

func (r *fakeAddressRepo) Update(_ context.Context, address domain.Address) (domain.Address, error) {
	if _, ok := r.state.addresses[address.ID]; !ok {
		return domain.Address{}, postgres.NotFound("addresses.update")
	}
	r.state.addresses[address.ID] = address
	return address, nil
}

func (r *fakeAddressRepo) Delete(_ context.Context, id uuid.UUID, userID string) error {
	a, ok := r.state.addresses[id]
	if !ok || a.UserID != userID {
		return postgres.NotFound("addresses.delete")
	}
	delete(r.state.addresses, id)
	return nil
}

type fakeCartRepo fakeStore

func (r *fakeCartRepo) FindByOwner(_ context.Context, userID string) (domain.Cart, error) {
	c, ok := r.state.carts[userID]
	if !ok {
		return domain.Cart{}, postgres.NotFound("carts.find_by_owner")
	}
	return c, nil
}

func (r *fakeCartRepo) Insert(_ context.Context, cart domain.Cart) (domain.Cart, error) {
	if _, ok := r.state.carts[cart.UserID]; ok {
		return domain.Cart{}, &postgres.StoreError{Kind: postgres.KindConflict, Op: "carts.insert"}
	}
	r.state.carts[cart.UserID] = cart
	return cart, nil
}

func (r *fakeCartRepo) SetCoupon(_ context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	for userID, c := range r.state.carts {
		if c.ID == cartID {
			c.CouponID = couponID
			r.state.carts[userID] = c
			return nil
		}
	}
	return postgres.NotFound("carts.set_coupon")
}

func (r *fakeCartRepo) SetExpiry(_ context.Context, cartID uuid.UUID, expiresAt time.Time) error {
	for userID, c := range r.state.carts {
		if c.ID == cartID {
			c.ExpiresAt = expiresAt
			r.state.carts[userID] = c
			return nil
		}
	}
	return postgres.NotFound("carts.set_expiry")
}

func (r *fakeCartRepo) Lines(_ context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	var out []domain.CartLine
	for _, item := range r.state.cartItems {
		if item.CartID != cartID {
			continue
		}
		variant := r.state.variants[item.VariantID]
		product := r.state.products[variant.ProductID]
		out = append(out, domain.CartLine{
			Item:        item,
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         variant.SKU,
			Color:       variant.Color,
			Size:        variant.Size,
			UnitPrice:   variant.UnitPrice(product.BasePrice),
			Stock:       variant.StockQuantity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *fakeCartRepo) FindItem(_ context.Context, cartID, itemID uuid.UUID) (domain.CartItem, error) {
	item, ok := r.state.cartItems[itemID]
	if !ok || item.CartID != cartID {
		return domain.CartItem{}, postgres.NotFound("carts.find_item")
	}
	return item, nil
}

func (r *fakeCartRepo) FindItemByVariant(_ context.Context, cartID, variantID uuid.UUID) (domain.CartItem, error) {
	for _, item := range r.state.cartItems {
		if item.CartID == cartID && item.VariantID == variantID {
			return item, nil
		}
	}
	return domain.CartItem{}, postgres.NotFound("carts.find_item_by_variant")
}

func (r *fakeCartRepo) InsertItem(_ context.Context, item domain.CartItem) (domain.CartItem, error) {
	r.state.cartItems[item.ID] = item
	return item, nil
}

func (r *fakeCartRepo) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := r.state.cartItems[itemID]
	if !ok {
		return postgres.NotFound("carts.update_item")
	}
	item.Quantity = quantity
	r.state.cartItems[itemID] = item
	return nil
}

func (r *fakeCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	if _, ok := r.state.cartItems[itemID]; !ok {
		return postgres.NotFound("carts.delete_item")
	}
	delete(r.state.cartItems, itemID)
	return nil
}

func (r *fakeCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	for id, item := range r.state.cartItems {
		if item.CartID == cartID {
			delete(r.state.cartItems, id)
		}
	}
	return nil
}

type fakeCouponRepo fakeStore

func (r *fakeCouponRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Coupon, error) {
	c, ok := r.state.coupons[id]
	if !ok {
		return domain.Coupon{}, postgres.NotFound("coupons.find_by_id")
	}
	return c, nil
}

func (r *fakeCouponRepo) FindByCode(_ context.Context, code string) (domain.Coupon, error) {
	for _, c := range r.state.coupons {
		if c.Code == strings.ToUpper(code) {
			return c, nil
		}
	}
	return domain.Coupon{}, postgres.NotFound("coupons.find_by_code")
}

func (r *fakeCouponRepo) List(_ context.Context, filter repositories.ListFilter) (repositories.Page[domain.Coupon], error) {
	var items []domain.Coupon
	for _, c := range r.state.coupons {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return repositories.Page[domain.Coupon]{Items: items, Total: len(items)}, nil
}

func (r *fakeCouponRepo) Insert(_ context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	for _, c := range r.state.coupons {
		if c.Code == coupon.Code {
			return domain.Coupon{}, &postgres.StoreError{Kind: postgres.KindConflict, Op: "coupons.insert"}
		}
	}
	r.state.coupons[coupon.ID] = coupon
	return coupon, nil
}

func (r *fakeCouponRepo) Update(_ context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	if _, ok := r.state.coupons[coupon.ID]; !ok {
		return domain.Coupon{}, postgres.NotFound("coupons.update")
	}
	r.state.coupons[coupon.ID] = coupon
	return coupon, nil
}

func (r *fakeCouponRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.state.coupons[id]; !ok {
		return postgres.NotFound("coupons.delete")
	}
	delete(r.state.coupons, id)
	return nil
}

func (r *fakeCouponRepo) IncrementUsage(_ context.Context, id uuid.UUID) (bool, error) {
	c, ok := r.state.coupons[id]
	if !ok {
		return false, postgres.NotFound("coupons.increment_usage")
	}
	if c.Exhausted() {
		return false, nil
	}
	c.UsedCount++
	r.state.coupons[id] = c
	return true, nil
}

type fakeOrderRepo fakeStore

func (r *fakeOrderRepo) Insert(_ context.Context, order domain.Order, items []domain.OrderItem) (domain.Order, error) {
	r.state.orders[order.ID] = order
	r.state.orderItems[order.ID] = append([]domain.OrderItem(nil), items...)
	return order, nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Order, error) {
	o, ok := r.state.orders[id]
	if !ok {
		return domain.Order{}, postgres.NotFound("orders.find_by_id")
	}
	return o, nil
}

func (r *fakeOrderRepo) FindForOwner(_ context.Context, id uuid.UUID, userID string) (domain.Order, error) {
	o, ok := r.state.orders[id]
	if !ok || o.UserID != userID {
		return domain.Order{}, postgres.NotFound("orders.find_for_owner")
	}
	return o, nil
}

func (r *fakeOrderRepo) List(_ context.Context, filter repositories.OrderListFilter) (repositories.Page[domain.Order], error) {
	var items []domain.Order
	for _, o := range r.state.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		items = append(items, o)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OrderNumber < items[j].OrderNumber })
	return repositories.Page[domain.Order]{Items: items, Total: len(items)}, nil
}

func (r *fakeOrderRepo) Items(_ context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	return append([]domain.OrderItem(nil), r.state.orderItems[orderID]...), nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	o, ok := r.state.orders[orderID]
	if !ok {
		return postgres.NotFound("orders.update_status")
	}
	o.Status = status
	r.state.orders[orderID] = o
	return nil
}

type fakePaymentRepo fakeStore

func (r *fakePaymentRepo) Insert(_ context.Context, payment domain.Payment) (domain.Payment, error) {
	r.state.payments[payment.ID] = payment
	return payment, nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Payment, error) {
	p, ok := r.state.payments[id]
	if !ok {
		return domain.Payment{}, postgres.NotFound("payments.find_by_id")
	}
	return p, nil
}

func (r *fakePaymentRepo) FindByReference(_ context.Context, reference string) (domain.Payment, error) {
	for _, p := range r.state.payments {
		if p.Reference == reference {
			return p, nil
		}
	}
	return domain.Payment{}, postgres.NotFound("payments.find_by_reference")
}

func (r *fakePaymentRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range r.state.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) HasSuccessForOrder(_ context.Context, orderID uuid.UUID) (bool, error) {
	for _, p := range r.state.payments {
		if p.OrderID == orderID && p.Status == domain.PaymentStatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) Settle(_ context.Context, id uuid.UUID, status domain.PaymentStatus, providerRef string, paidAt *time.Time) (bool, error) {
	p, ok := r.state.payments[id]
	if !ok {
		return false, nil
	}
	if p.Status == domain.PaymentStatusSuccess || p.Status == domain.PaymentStatusRefunded {
		return false, nil
	}
	p.Status = status
	if providerRef != "" {
		p.ProviderRef = providerRef
	}
	p.PaidAt = paidAt
	r.state.payments[id] = p
	return true, nil
}

func (r *fakePaymentRepo) MarkRefunded(_ context.Context, id uuid.UUID) (bool, error) {
	p, ok := r.state.payments[id]
	if !ok || p.Status != domain.PaymentStatusSuccess {
		return false, nil
	}
	p.Status = domain.PaymentStatusRefunded
	r.state.payments[id] = p
	return true, nil
}

func (r *fakePaymentRepo) InsertEvent(_ context.Context, event domain.PaymentEvent) error {
	r.state.paymentEvents = append(r.state.paymentEvents, event)
	return nil
}

type fakeHealthRepo struct{}

func (fakeHealthRepo) Ping(context.Context) error { return nil }

// fixedClock pins service time for deterministic assertions.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
