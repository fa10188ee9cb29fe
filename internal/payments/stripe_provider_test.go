package payments

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v78"
)

type stubSessions struct {
	params  *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
}

func (s *stubSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func newTestStripeProvider(t *testing.T, sessions stripeSessionAPI) *StripeProvider {
	t.Helper()
	provider, err := NewStripeProvider(StripeProviderConfig{
		SuccessURL: "https://shop.example/pay/success",
		CancelURL:  "https://shop.example/pay/cancel",
		Clock:      func() time.Time { return opayNow },
		Sessions:   sessions,
	})
	if err != nil {
		t.Fatalf("NewStripeProvider: %v", err)
	}
	return provider
}

func TestStripeInitializeCreatesCheckoutSession(t *testing.T) {
	sessions := &stubSessions{
		session: &stripe.CheckoutSession{
			ID:        "cs_test_123",
			URL:       "https://checkout.stripe.example/c/cs_test_123",
			ExpiresAt: opayNow.Add(24 * time.Hour).Unix(),
		},
	}
	provider := newTestStripeProvider(t, sessions)

	init, err := provider.Initialize(context.Background(), InitializeRequest{
		Reference:     "PAY-01J0STRIPE",
		OrderNumber:   "ZC-01J0ORDER",
		Amount:        14_400_00,
		Currency:      "NGN",
		CustomerEmail: "ada@example.com",
		Metadata:      map[string]string{"orderId": "abc"},
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if init.Provider != "stripe" || init.ProviderRef != "cs_test_123" {
		t.Fatalf("init = %+v", init)
	}
	if init.RedirectURL != "https://checkout.stripe.example/c/cs_test_123" {
		t.Fatalf("redirect = %q", init.RedirectURL)
	}
	if want := time.Unix(sessions.session.ExpiresAt, 0).UTC(); !init.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %s, want %s", init.ExpiresAt, want)
	}

	params := sessions.params
	if params == nil {
		t.Fatal("no session params captured")
	}
	if got := stripe.StringValue(params.ClientReferenceID); got != "PAY-01J0STRIPE" {
		t.Fatalf("clientReferenceID = %q", got)
	}
	if got := stripe.StringValue(params.CustomerEmail); got != "ada@example.com" {
		t.Fatalf("customerEmail = %q", got)
	}
	if len(params.LineItems) != 1 {
		t.Fatalf("lineItems = %d, want 1", len(params.LineItems))
	}
	price := params.LineItems[0].PriceData
	if stripe.Int64Value(price.UnitAmount) != 14_400_00 || stripe.StringValue(price.Currency) != "ngn" {
		t.Fatalf("priceData = %+v", price)
	}
	if params.Metadata["orderId"] != "abc" {
		t.Fatalf("metadata = %+v", params.Metadata)
	}
}

func TestStripeInitializeFallsBackExpiry(t *testing.T) {
	sessions := &stubSessions{session: &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://x"}}
	provider := newTestStripeProvider(t, sessions)

	init, err := provider.Initialize(context.Background(), InitializeRequest{Reference: "PAY-X", Amount: 100, Currency: "NGN"})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if want := opayNow.UTC().Add(30 * time.Minute); !init.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %s, want %s", init.ExpiresAt, want)
	}
}

func TestStripeInitializePropagatesError(t *testing.T) {
	wantErr := errors.New("stripe: card testing suspected")
	provider := newTestStripeProvider(t, &stubSessions{err: wantErr})

	_, err := provider.Initialize(context.Background(), InitializeRequest{Reference: "PAY-X", Amount: 100, Currency: "NGN"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestNewStripeProviderRequiresURLs(t *testing.T) {
	_, err := NewStripeProvider(StripeProviderConfig{Sessions: &stubSessions{}})
	if err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestManagerRoutesByName(t *testing.T) {
	opaySessions := &stubSessions{session: &stripe.CheckoutSession{ID: "cs_1", URL: "https://x"}}
	stripeProvider := newTestStripeProvider(t, opaySessions)
	opayProvider := newTestOPayProvider(t, doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"code":"00000","data":{"orderNo":"op-1","cashierUrl":"https://y"}}`), nil
	}))

	manager, err := NewManager("opay", opayProvider, stripeProvider)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	req := InitializeRequest{Reference: "PAY-X", Amount: 100, Currency: "NGN"}

	init, err := manager.Initialize(context.Background(), "", req)
	if err != nil {
		t.Fatalf("Initialize default: %v", err)
	}
	if init.Provider != "opay" {
		t.Fatalf("default provider = %q, want opay", init.Provider)
	}

	init, err = manager.Initialize(context.Background(), "STRIPE", req)
	if err != nil {
		t.Fatalf("Initialize stripe: %v", err)
	}
	if init.Provider != "stripe" {
		t.Fatalf("provider = %q, want stripe", init.Provider)
	}

	if _, err := manager.Initialize(context.Background(), "paystack", req); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("err = %v, want ErrUnsupportedProvider", err)
	}
}

func TestNewManagerRejectsUnknownDefault(t *testing.T) {
	provider := newTestStripeProvider(t, &stubSessions{})
	if _, err := NewManager("opay", provider); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("err = %v, want ErrUnsupportedProvider", err)
	}
}
