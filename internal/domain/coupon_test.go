package domain

import (
	"testing"
	"time"
)

func TestCouponWithinWindow(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	coupon := Coupon{StartsAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)}

	if !coupon.WithinWindow(now) {
		t.Error("inside the window")
	}
	if coupon.WithinWindow(now.Add(-2 * time.Hour)) {
		t.Error("before start")
	}
	if coupon.WithinWindow(now.Add(2 * time.Hour)) {
		t.Error("after expiry")
	}
	if coupon.WithinWindow(coupon.ExpiresAt) {
		t.Error("expiry instant is exclusive")
	}

	open := Coupon{StartsAt: now.Add(-time.Hour)}
	if !open.WithinWindow(now.Add(1000 * time.Hour)) {
		t.Error("zero expiry means no upper bound")
	}
}

func TestCouponExhausted(t *testing.T) {
	if (Coupon{UsedCount: 100}).Exhausted() {
		t.Error("nil max uses never exhausts")
	}
	five := 5
	if (Coupon{MaxUses: &five, UsedCount: 4}).Exhausted() {
		t.Error("under the cap")
	}
	if !(Coupon{MaxUses: &five, UsedCount: 5}).Exhausted() {
		t.Error("at the cap")
	}
}

func TestVariantUnitPrice(t *testing.T) {
	v := ProductVariant{PriceModifier: 500}
	if got := v.UnitPrice(1000); got != 1500 {
		t.Errorf("unit price = %d, want 1500", got)
	}
	neg := ProductVariant{PriceModifier: -2000}
	if got := neg.UnitPrice(1000); got != 0 {
		t.Errorf("unit price = %d, want clamped 0", got)
	}
}
