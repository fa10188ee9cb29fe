package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestCouponService(t *testing.T, store *fakeStore) *couponService {
	t.Helper()
	svc, err := NewCouponService(CouponServiceDeps{
		Repo:  store.Coupons(),
		Clock: fixedClock(testNow),
	})
	if err != nil {
		t.Fatalf("NewCouponService: %v", err)
	}
	return svc
}

func seedCoupon(store *fakeStore, mutate func(*domain.Coupon)) domain.Coupon {
	coupon := domain.Coupon{
		ID:        uuid.New(),
		Code:      "WELCOME10",
		Kind:      domain.CouponPercentage,
		Value:     10,
		StartsAt:  testNow.Add(-time.Hour),
		ExpiresAt: testNow.Add(24 * time.Hour),
		Active:    true,
	}
	if mutate != nil {
		mutate(&coupon)
	}
	store.state.coupons[coupon.ID] = coupon
	return coupon
}

func TestCouponResolve(t *testing.T) {
	t.Run("percentage discount", func(t *testing.T) {
		store := newFakeStore()
		seedCoupon(store, nil)
		svc := newTestCouponService(t, store)

		coupon, discount, waive, err := svc.Resolve(context.Background(), "welcome10", 10_000_00)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if coupon.Code != "WELCOME10" {
			t.Errorf("code = %s", coupon.Code)
		}
		if discount != 1_000_00 {
			t.Errorf("discount = %d, want 100000", discount)
		}
		if waive {
			t.Error("waive = true, want false")
		}
	})

	t.Run("fixed amount clamps", func(t *testing.T) {
		store := newFakeStore()
		seedCoupon(store, func(c *domain.Coupon) {
			c.Code = "FLAT500"
			c.Kind = domain.CouponFixedAmount
			c.Value = 500_00
		})
		svc := newTestCouponService(t, store)

		_, discount, _, err := svc.Resolve(context.Background(), "FLAT500", 300_00)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if discount != 300_00 {
			t.Errorf("discount = %d, want 30000", discount)
		}
	})

	t.Run("free shipping waives without discounting", func(t *testing.T) {
		store := newFakeStore()
		seedCoupon(store, func(c *domain.Coupon) {
			c.Code = "SHIPFREE"
			c.Kind = domain.CouponFreeShipping
			c.Value = 0
		})
		svc := newTestCouponService(t, store)

		_, discount, waive, err := svc.Resolve(context.Background(), "SHIPFREE", 10_000_00)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if discount != 0 || !waive {
			t.Errorf("discount = %d waive = %v, want 0 true", discount, waive)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestCouponService(t, store)

		_, _, _, err := svc.Resolve(context.Background(), "NOPE", 10_000_00)
		if !errors.Is(err, ErrCouponNotFound) {
			t.Errorf("err = %v, want ErrCouponNotFound", err)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*domain.Coupon)
			want   error
		}{
			{"inactive", func(c *domain.Coupon) { c.Active = false }, ErrCouponInactive},
			{"not started", func(c *domain.Coupon) { c.StartsAt = testNow.Add(time.Hour) }, ErrCouponNotStarted},
			{"expired", func(c *domain.Coupon) { c.ExpiresAt = testNow.Add(-time.Minute) }, ErrCouponExpired},
			{"exhausted", func(c *domain.Coupon) {
				max := 5
				c.MaxUses = &max
				c.UsedCount = 5
			}, ErrCouponExhausted},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				store := newFakeStore()
				seedCoupon(store, tc.mutate)
				svc := newTestCouponService(t, store)

				_, _, _, err := svc.Resolve(context.Background(), "WELCOME10", 10_000_00)
				if !errors.Is(err, tc.want) {
					t.Errorf("err = %v, want %v", err, tc.want)
				}
			})
		}
	})

	t.Run("minimum not met carries the floor", func(t *testing.T) {
		store := newFakeStore()
		min := domain.Money(5_000_00)
		seedCoupon(store, func(c *domain.Coupon) { c.MinOrderAmount = &min })
		svc := newTestCouponService(t, store)

		_, _, _, err := svc.Resolve(context.Background(), "WELCOME10", 1_000_00)
		if !errors.Is(err, ErrCouponMinimumNotMet) {
			t.Fatalf("err = %v, want ErrCouponMinimumNotMet", err)
		}
		var notMet *MinimumNotMetError
		if !errors.As(err, &notMet) {
			t.Fatalf("err = %T, want *MinimumNotMetError", err)
		}
		if notMet.Required != 5_000_00 {
			t.Errorf("required = %d, want 500000", notMet.Required)
		}
	})
}

func TestCouponAdminCRUD(t *testing.T) {
	t.Run("create normalises the code", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestCouponService(t, store)

		coupon, err := svc.CreateCoupon(context.Background(), UpsertCouponCommand{
			Code:     " promo20 ",
			Kind:     "percentage",
			Value:    20,
			StartsAt: testNow,
			Active:   true,
		})
		if err != nil {
			t.Fatalf("CreateCoupon: %v", err)
		}
		if coupon.Code != "PROMO20" {
			t.Errorf("code = %s, want PROMO20", coupon.Code)
		}
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		store := newFakeStore()
		seedCoupon(store, nil)
		svc := newTestCouponService(t, store)

		_, err := svc.CreateCoupon(context.Background(), UpsertCouponCommand{
			Code:     "WELCOME10",
			Kind:     "percentage",
			Value:    15,
			StartsAt: testNow,
			Active:   true,
		})
		if !errors.Is(err, ErrCouponCodeTaken) {
			t.Errorf("err = %v, want ErrCouponCodeTaken", err)
		}
	})

	t.Run("invalid kind and values rejected", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestCouponService(t, store)

		cases := []UpsertCouponCommand{
			{Code: "X", Kind: "bogus", Value: 10},
			{Code: "X", Kind: "percentage", Value: 0},
			{Code: "X", Kind: "percentage", Value: 101},
			{Code: "X", Kind: "fixed_amount", Value: 0},
			{Code: "", Kind: "percentage", Value: 10},
		}
		for _, cmd := range cases {
			if _, err := svc.CreateCoupon(context.Background(), cmd); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("CreateCoupon(%+v) err = %v, want ErrInvalidInput", cmd, err)
			}
		}
	})

	t.Run("update keeps usage count", func(t *testing.T) {
		store := newFakeStore()
		coupon := seedCoupon(store, func(c *domain.Coupon) { c.UsedCount = 7 })
		svc := newTestCouponService(t, store)

		updated, err := svc.UpdateCoupon(context.Background(), coupon.ID, UpsertCouponCommand{
			Code:     "WELCOME10",
			Kind:     "percentage",
			Value:    25,
			StartsAt: testNow,
			Active:   true,
		})
		if err != nil {
			t.Fatalf("UpdateCoupon: %v", err)
		}
		if updated.UsedCount != 7 {
			t.Errorf("used count = %d, want 7", updated.UsedCount)
		}
		if updated.Value != 25 {
			t.Errorf("value = %d, want 25", updated.Value)
		}
	})

	t.Run("delete unknown coupon", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestCouponService(t, store)

		if err := svc.DeleteCoupon(context.Background(), uuid.New()); !errors.Is(err, ErrCouponNotFound) {
			t.Errorf("err = %v, want ErrCouponNotFound", err)
		}
	})
}
