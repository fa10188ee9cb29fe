package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultRequestTimeout  = 60 * time.Second
	defaultDatabaseURL     = "postgres://localhost:5432/zuricart?sslmode=disable"
	defaultMaxConns        = 10
	defaultVATRate         = 0.075
	defaultShippingFee     = 2500_00
	defaultCurrency        = "NGN"
	defaultCartTTL         = 72 * time.Hour
	defaultPageLimit       = 20
	defaultMaxPageLimit    = 100
	defaultSignatureHeader = "X-Signature"
	defaultTimestampHeader = "X-Signature-Timestamp"
	defaultWebhookSkew     = 5 * time.Minute
	defaultPaymentProvider = "opay"
	defaultOPayBaseURL     = "https://cashierapi.opayweb.com"
)

// Config captures all runtime configuration organised by concern. Business
// packages receive the section they need at construction and never read the
// environment themselves.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Payments   PaymentsConfig
	Webhooks   WebhookConfig
	Pricing    PricingConfig
	Cart       CartConfig
	Orders     OrdersConfig
	Pagination PaginationConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig stores PostgreSQL connection parameters.
type DatabaseConfig struct {
	URL      string
	MaxConns int
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// PaymentsConfig collects payment-provider settings.
type PaymentsConfig struct {
	DefaultProvider string
	OPay            OPayConfig
	Stripe          StripeConfig
}

// OPayConfig holds credentials for the OPay cashier API.
type OPayConfig struct {
	BaseURL    string
	MerchantID string
	PublicKey  string
	SecretKey  string
}

// StripeConfig holds Stripe credentials and redirect targets.
type StripeConfig struct {
	APIKey     string
	SuccessURL string
	CancelURL  string
}

// WebhookConfig contains webhook signature expectations.
type WebhookConfig struct {
	SigningSecret   string
	SignatureHeader string
	TimestampHeader string
	ClockSkew       time.Duration
}

// PricingConfig feeds the pricing calculator and checkout orchestrator.
type PricingConfig struct {
	VATRate         float64
	FlatShippingFee int64
	Currency        string
}

// CartConfig controls cart behaviour.
type CartConfig struct {
	TTL time.Duration
}

// OrdersConfig controls order lifecycle behaviour.
type OrdersConfig struct {
	// StrictAdminTransitions enforces the transition table on admin status
	// updates. Permissive mode accepts any known status.
	StrictAdminTransitions bool
}

// PaginationConfig holds list-endpoint defaults.
type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Load reads the optional .env file and the process environment into a
// validated Config.
func Load() (Config, error) {
	if _, err := os.Stat(defaultEnvFile); err == nil {
		if err := godotenv.Load(defaultEnvFile); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", defaultEnvFile, err)
		}
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           envString("PORT", defaultPort),
			ReadTimeout:    envDuration("SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   envDuration("SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    envDuration("SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: envDuration("SERVER_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Database: DatabaseConfig{
			URL:      envString("DATABASE_URL", defaultDatabaseURL),
			MaxConns: envInt("DATABASE_MAX_CONNS", defaultMaxConns),
		},
		Auth: AuthConfig{
			JWTSecret: envString("AUTH_JWT_SECRET", ""),
			Issuer:    envString("AUTH_ISSUER", ""),
		},
		Payments: PaymentsConfig{
			DefaultProvider: strings.ToLower(envString("PAYMENTS_DEFAULT_PROVIDER", defaultPaymentProvider)),
			OPay: OPayConfig{
				BaseURL:    envString("OPAY_BASE_URL", defaultOPayBaseURL),
				MerchantID: envString("OPAY_MERCHANT_ID", ""),
				PublicKey:  envString("OPAY_PUBLIC_KEY", ""),
				SecretKey:  envString("OPAY_SECRET_KEY", ""),
			},
			Stripe: StripeConfig{
				APIKey:     envString("STRIPE_API_KEY", ""),
				SuccessURL: envString("STRIPE_SUCCESS_URL", ""),
				CancelURL:  envString("STRIPE_CANCEL_URL", ""),
			},
		},
		Webhooks: WebhookConfig{
			SigningSecret:   envString("WEBHOOK_SIGNING_SECRET", ""),
			SignatureHeader: envString("WEBHOOK_SIGNATURE_HEADER", defaultSignatureHeader),
			TimestampHeader: envString("WEBHOOK_TIMESTAMP_HEADER", defaultTimestampHeader),
			ClockSkew:       envDuration("WEBHOOK_CLOCK_SKEW", defaultWebhookSkew),
		},
		Pricing: PricingConfig{
			VATRate:         envFloat("PRICING_VAT_RATE", defaultVATRate),
			FlatShippingFee: envInt64("PRICING_FLAT_SHIPPING_FEE", defaultShippingFee),
			Currency:        strings.ToUpper(envString("PRICING_CURRENCY", defaultCurrency)),
		},
		Cart: CartConfig{
			TTL: envDuration("CART_TTL", defaultCartTTL),
		},
		Orders: OrdersConfig{
			StrictAdminTransitions: envBool("ORDERS_STRICT_ADMIN_TRANSITIONS", true),
		},
		Pagination: PaginationConfig{
			DefaultLimit: envInt("PAGINATION_DEFAULT_LIMIT", defaultPageLimit),
			MaxLimit:     envInt("PAGINATION_MAX_LIMIT", defaultMaxPageLimit),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("config: DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("config: AUTH_JWT_SECRET is required"))
	}
	if c.Pricing.VATRate < 0 || c.Pricing.VATRate >= 1 {
		errs = append(errs, fmt.Errorf("config: PRICING_VAT_RATE %v out of range [0,1)", c.Pricing.VATRate))
	}
	if c.Pricing.FlatShippingFee < 0 {
		errs = append(errs, errors.New("config: PRICING_FLAT_SHIPPING_FEE must not be negative"))
	}
	if c.Cart.TTL <= 0 {
		errs = append(errs, errors.New("config: CART_TTL must be positive"))
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		errs = append(errs, errors.New("config: pagination limits are inconsistent"))
	}
	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func envInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
