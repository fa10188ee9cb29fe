package handlers

import (
	"time"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/services"
)

type productResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	BasePrice   domain.Money      `json:"basePrice"`
	Currency    string            `json:"currency"`
	Active      bool              `json:"active"`
	Variants    []variantResponse `json:"variants"`
}

type variantResponse struct {
	ID            string       `json:"id"`
	SKU           string       `json:"sku"`
	Color         string       `json:"color,omitempty"`
	Size          string       `json:"size,omitempty"`
	UnitPrice     domain.Money `json:"unitPrice"`
	StockQuantity int          `json:"stockQuantity"`
	Active        bool         `json:"active"`
}

func toProductResponse(view services.ProductView) productResponse {
	variants := make([]variantResponse, 0, len(view.Variants))
	for _, v := range view.Variants {
		variants = append(variants, variantResponse{
			ID:            v.ID.String(),
			SKU:           v.SKU,
			Color:         v.Color,
			Size:          v.Size,
			UnitPrice:     v.UnitPrice,
			StockQuantity: v.StockQuantity,
			Active:        v.Active,
		})
	}
	return productResponse{
		ID:          view.ID.String(),
		Name:        view.Name,
		Slug:        view.Slug,
		Description: view.Description,
		BasePrice:   view.BasePrice,
		Currency:    view.Currency,
		Active:      view.Active,
		Variants:    variants,
	}
}

type addressResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone,omitempty"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

func toAddressResponse(a domain.Address) addressResponse {
	return addressResponse{
		ID:        a.ID.String(),
		Label:     a.Label,
		Recipient: a.Recipient,
		Phone:     a.Phone,
		Line1:     a.Line1,
		Line2:     a.Line2,
		City:      a.City,
		State:     a.State,
		Country:   a.Country,
		IsDefault: a.IsDefault,
	}
}

type orderResponse struct {
	ID          string              `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	Status      string              `json:"status"`
	Subtotal    domain.Money        `json:"subtotal"`
	Discount    domain.Money        `json:"discount"`
	ShippingFee domain.Money        `json:"shippingFee"`
	VAT         domain.Money        `json:"vat"`
	Total       domain.Money        `json:"total"`
	CouponCode  string              `json:"couponCode,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Shipping    shippingResponse    `json:"shipping"`
	Items       []orderItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

type shippingResponse struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone,omitempty"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country"`
}

type orderItemResponse struct {
	ID          string       `json:"id"`
	VariantID   string       `json:"variantId"`
	ProductName string       `json:"productName"`
	SKU         string       `json:"sku"`
	Color       string       `json:"color,omitempty"`
	Size        string       `json:"size,omitempty"`
	Quantity    int          `json:"quantity"`
	UnitPrice   domain.Money `json:"unitPrice"`
	TotalPrice  domain.Money `json:"totalPrice"`
}

func toOrderResponse(order domain.Order, items []domain.OrderItem) orderResponse {
	resp := orderResponse{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Subtotal:    order.Subtotal,
		Discount:    order.Discount,
		ShippingFee: order.ShippingFee,
		VAT:         order.VAT,
		Total:       order.Total,
		CouponCode:  order.CouponCode,
		Notes:       order.Notes,
		Shipping: shippingResponse{
			Recipient: order.Shipping.Recipient,
			Phone:     order.Shipping.Phone,
			Line1:     order.Shipping.Line1,
			Line2:     order.Shipping.Line2,
			City:      order.Shipping.City,
			State:     order.Shipping.State,
			Country:   order.Shipping.Country,
		},
		CreatedAt: order.CreatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:          item.ID.String(),
			VariantID:   item.VariantID.String(),
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Color:       item.Color,
			Size:        item.Size,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return resp
}

type paymentResponse struct {
	ID          string       `json:"id"`
	OrderID     string       `json:"orderId"`
	Reference   string       `json:"reference"`
	Provider    string       `json:"provider"`
	Amount      domain.Money `json:"amount"`
	Currency    string       `json:"currency"`
	Status      string       `json:"status"`
	RedirectURL string       `json:"redirectUrl,omitempty"`
	PaidAt      *time.Time   `json:"paidAt,omitempty"`
}

func toPaymentResponse(p domain.Payment, redirectURL string) paymentResponse {
	return paymentResponse{
		ID:          p.ID.String(),
		OrderID:     p.OrderID.String(),
		Reference:   p.Reference,
		Provider:    p.Provider,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      string(p.Status),
		RedirectURL: redirectURL,
		PaidAt:      p.PaidAt,
	}
}

type couponResponse struct {
	ID             string        `json:"id"`
	Code           string        `json:"code"`
	Kind           string        `json:"kind"`
	Value          domain.Money  `json:"value"`
	MinOrderAmount *domain.Money `json:"minOrderAmount,omitempty"`
	StartsAt       time.Time     `json:"startsAt"`
	ExpiresAt      *time.Time    `json:"expiresAt,omitempty"`
	MaxUses        *int          `json:"maxUses,omitempty"`
	UsedCount      int           `json:"usedCount"`
	Active         bool          `json:"active"`
}

func toCouponResponse(c domain.Coupon) couponResponse {
	resp := couponResponse{
		ID:             c.ID.String(),
		Code:           c.Code,
		Kind:           string(c.Kind),
		Value:          c.Value,
		MinOrderAmount: c.MinOrderAmount,
		StartsAt:       c.StartsAt,
		MaxUses:        c.MaxUses,
		UsedCount:      c.UsedCount,
		Active:         c.Active,
	}
	if !c.ExpiresAt.IsZero() {
		expires := c.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
