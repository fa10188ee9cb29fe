package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

const stripeProviderName = "stripe"

// StripeLogger defines the logging contract for Stripe provider operations.
type StripeLogger func(ctx context.Context, event string, fields map[string]any)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProviderConfig configures the StripeProvider.
type StripeProviderConfig struct {
	APIKey     string
	SuccessURL string
	CancelURL  string
	Logger     StripeLogger
	Clock      func() time.Time

	// Sessions overrides the Stripe client in tests.
	Sessions stripeSessionAPI
}

// StripeProvider implements Provider using Stripe hosted checkout sessions.
type StripeProvider struct {
	sessions   stripeSessionAPI
	successURL string
	cancelURL  string
	logger     StripeLogger
	now        func() time.Time
}

// NewStripeProvider constructs a Stripe Provider using the given configuration.
func NewStripeProvider(cfg StripeProviderConfig) (*StripeProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && cfg.Sessions == nil {
		return nil, errors.New("stripe: api key is required")
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" || strings.TrimSpace(cfg.CancelURL) == "" {
		return nil, errors.New("stripe: success and cancel urls are required")
	}

	sessions := cfg.Sessions
	if sessions == nil {
		sc := client.New(apiKey, nil)
		sessions = sc.CheckoutSessions
	}
	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &StripeProvider{
		sessions:   sessions,
		successURL: strings.TrimSpace(cfg.SuccessURL),
		cancelURL:  strings.TrimSpace(cfg.CancelURL),
		logger:     logger,
		now:        now,
	}, nil
}

// Name identifies the provider in the registry.
func (p *StripeProvider) Name() string { return stripeProviderName }

// Initialize opens a Stripe checkout session covering the payment amount.
func (p *StripeProvider) Initialize(ctx context.Context, req InitializeRequest) (Initialization, error) {
	if strings.TrimSpace(req.Reference) == "" {
		return Initialization{}, errors.New("stripe: reference is required")
	}
	if req.Amount <= 0 {
		return Initialization{}, errors.New("stripe: amount must be positive")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		ClientReferenceID: stripe.String(req.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order " + req.OrderNumber),
					},
				},
			},
		},
	}
	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata)+1)
		for k, v := range req.Metadata {
			params.Metadata[k] = v
		}
	}
	params.Context = ctx

	session, err := p.sessions.New(params)
	if err != nil {
		p.logger(ctx, "stripe.session_failed", map[string]any{"reference": req.Reference, "error": err.Error()})
		return Initialization{}, err
	}

	expiresAt := p.now().UTC().Add(30 * time.Minute)
	if session.ExpiresAt > 0 {
		expiresAt = time.Unix(session.ExpiresAt, 0).UTC()
	}

	return Initialization{
		Provider:    stripeProviderName,
		Reference:   req.Reference,
		ProviderRef: session.ID,
		RedirectURL: session.URL,
		ExpiresAt:   expiresAt,
	}, nil
}
