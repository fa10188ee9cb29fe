package payments

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrUnsupportedProvider is returned when the manager cannot locate a provider.
var ErrUnsupportedProvider = errors.New("payments: unsupported provider")

// InitializeRequest carries the data a provider needs to open a payment.
type InitializeRequest struct {
	Reference     string
	OrderNumber   string
	Amount        int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// Initialization is the provider's answer: where to send the customer and
// which provider-side handle to reconcile against later.
type Initialization struct {
	Provider    string
	Reference   string
	ProviderRef string
	RedirectURL string
	ExpiresAt   time.Time
}

// Provider is the contract PSP adapters implement.
type Provider interface {
	Name() string
	Initialize(ctx context.Context, req InitializeRequest) (Initialization, error)
}

// Manager selects among registered providers.
type Manager struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewManager builds a Manager from the given providers. The default provider
// must be among them.
func NewManager(defaultProvider string, providers ...Provider) (*Manager, error) {
	registry := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(p.Name()))
		if name == "" {
			return nil, errors.New("payments: provider with empty name")
		}
		registry[name] = p
	}
	if len(registry) == 0 {
		return nil, errors.New("payments: at least one provider is required")
	}

	defaultProvider = strings.ToLower(strings.TrimSpace(defaultProvider))
	if _, ok := registry[defaultProvider]; !ok {
		return nil, ErrUnsupportedProvider
	}

	return &Manager{providers: registry, defaultProvider: defaultProvider}, nil
}

// Initialize routes the request to the named provider, or the default when
// name is empty.
func (m *Manager) Initialize(ctx context.Context, name string, req InitializeRequest) (Initialization, error) {
	if m == nil || len(m.providers) == 0 {
		return Initialization{}, ErrUnsupportedProvider
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = m.defaultProvider
	}
	provider, ok := m.providers[name]
	if !ok {
		return Initialization{}, ErrUnsupportedProvider
	}
	return provider.Initialize(ctx, req)
}
