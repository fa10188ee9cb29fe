package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CouponKind tags how a coupon's value is interpreted. Adding a new kind is
// a single new constant plus a case in the discount resolver.
type CouponKind string

const (
	// CouponPercentage discounts the subtotal by value percent.
	CouponPercentage CouponKind = "percentage"
	// CouponFixedAmount discounts the subtotal by value minor units,
	// clamped to the subtotal.
	CouponFixedAmount CouponKind = "fixed_amount"
	// CouponFreeShipping waives the shipping fee instead of discounting
	// the subtotal.
	CouponFreeShipping CouponKind = "free_shipping"
)

// ParseCouponKind normalises a raw kind string.
func ParseCouponKind(raw string) (CouponKind, bool) {
	kind := CouponKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case CouponPercentage, CouponFixedAmount, CouponFreeShipping:
		return kind, true
	}
	return "", false
}

// Coupon is a discount code. UsedCount only ever increments, inside the
// checkout transaction.
type Coupon struct {
	ID             uuid.UUID
	Code           string
	Kind           CouponKind
	Value          Money
	MinOrderAmount *Money
	StartsAt       time.Time
	ExpiresAt      time.Time
	MaxUses        *int
	UsedCount      int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WithinWindow reports whether now falls inside [StartsAt, ExpiresAt).
func (c Coupon) WithinWindow(now time.Time) bool {
	if now.Before(c.StartsAt) {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}

// Exhausted reports whether the usage cap, when set, has been reached.
func (c Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}
