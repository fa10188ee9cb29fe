package services

import (
	"context"
	"errors"
	"math"

	domain "github.com/zuricart/api/internal/domain"
)

// ErrPricingInvalidInput flags negative amounts or a broken calculator config.
var ErrPricingInvalidInput = errors.New("pricing: invalid input")

// CalculatorConfig parameterises the tax and shipping arithmetic.
type CalculatorConfig struct {
	// VATRate is the fractional tax rate applied to the discounted subtotal.
	VATRate float64
	// FlatShippingFee is charged when no rater overrides it.
	FlatShippingFee domain.Money
}

// Calculator derives order totals. All arithmetic is integer minor units;
// only the VAT step rounds, half away from zero.
type Calculator struct {
	vatRate      float64
	flatShipping domain.Money
}

// NewCalculator validates the config and returns a Calculator.
func NewCalculator(cfg CalculatorConfig) (*Calculator, error) {
	if cfg.VATRate < 0 || cfg.VATRate >= 1 || math.IsNaN(cfg.VATRate) {
		return nil, ErrPricingInvalidInput
	}
	if cfg.FlatShippingFee < 0 {
		return nil, ErrPricingInvalidInput
	}
	return &Calculator{vatRate: cfg.VATRate, flatShipping: cfg.FlatShippingFee}, nil
}

// Quote is a fully derived price breakdown. Total is always
// DiscountedSubtotal + ShippingFee + VAT.
type Quote struct {
	Subtotal           domain.Money `json:"subtotal"`
	Discount           domain.Money `json:"discount"`
	DiscountedSubtotal domain.Money `json:"discountedSubtotal"`
	ShippingFee        domain.Money `json:"shippingFee"`
	VAT                domain.Money `json:"vat"`
	Total              domain.Money `json:"total"`
}

// Quote prices an order. The discount is clamped so the discounted subtotal
// never goes negative, VAT is computed on the discounted subtotal, and
// waiveShipping zeroes the shipping fee after the fact so free-shipping
// coupons never interact with the tax base.
func (c *Calculator) Quote(subtotal, discount, shipping domain.Money, waiveShipping bool) (Quote, error) {
	if subtotal < 0 || discount < 0 || shipping < 0 {
		return Quote{}, ErrPricingInvalidInput
	}
	if discount > subtotal {
		discount = subtotal
	}
	discounted := subtotal - discount
	if waiveShipping {
		shipping = 0
	}
	vat := roundHalfAway(float64(discounted) * c.vatRate)
	return Quote{
		Subtotal:           subtotal,
		Discount:           discount,
		DiscountedSubtotal: discounted,
		ShippingFee:        shipping,
		VAT:                vat,
		Total:              discounted + shipping + vat,
	}, nil
}

// FlatShippingFee reports the configured default shipping charge.
func (c *Calculator) FlatShippingFee() domain.Money { return c.flatShipping }

func roundHalfAway(v float64) domain.Money {
	return domain.Money(math.Round(v))
}

// ShippingRater prices shipping for a set of cart lines.
type ShippingRater interface {
	Rate(ctx context.Context, lines []domain.CartLine) (domain.Money, error)
}

// FlatShippingRater charges a fixed fee regardless of contents.
type FlatShippingRater struct {
	Fee domain.Money
}

func (r FlatShippingRater) Rate(context.Context, []domain.CartLine) (domain.Money, error) {
	return r.Fee, nil
}
