package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	opayProviderName     = "opay"
	opayCreatePath       = "/api/v1/international/cashier/create"
	opaySessionLifetime  = 30 * time.Minute
	opaySuccessCode      = "00000"
	defaultOPayUserAgent = "zuricart-api"
)

// OPayLogger defines the logging contract for OPay provider operations.
type OPayLogger func(ctx context.Context, event string, fields map[string]any)

// Doer abstracts *http.Client for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OPayProviderConfig configures the OPayProvider.
type OPayProviderConfig struct {
	BaseURL    string
	MerchantID string
	PublicKey  string
	HTTPClient Doer
	Logger     OPayLogger
	Clock      func() time.Time
}

// OPayProvider opens hosted-cashier sessions against the OPay API. The
// customer completes payment on OPay's page; the outcome arrives later on
// the signed webhook.
type OPayProvider struct {
	baseURL    string
	merchantID string
	publicKey  string
	client     Doer
	logger     OPayLogger
	now        func() time.Time
}

// NewOPayProvider constructs an OPay Provider using the given configuration.
func NewOPayProvider(cfg OPayProviderConfig) (*OPayProvider, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("opay: base url is required")
	}
	if strings.TrimSpace(cfg.MerchantID) == "" {
		return nil, errors.New("opay: merchant id is required")
	}
	if strings.TrimSpace(cfg.PublicKey) == "" {
		return nil, errors.New("opay: public key is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &OPayProvider{
		baseURL:    baseURL,
		merchantID: strings.TrimSpace(cfg.MerchantID),
		publicKey:  strings.TrimSpace(cfg.PublicKey),
		client:     client,
		logger:     logger,
		now:        now,
	}, nil
}

// Name identifies the provider in the registry.
func (p *OPayProvider) Name() string { return opayProviderName }

type opayCreateRequest struct {
	Reference   string         `json:"reference"`
	MchShortName string        `json:"mchShortName"`
	Amount      opayAmount     `json:"amount"`
	Product     opayProduct    `json:"product"`
	UserInfo    map[string]any `json:"userInfo,omitempty"`
	ExpireAt    int64          `json:"expireAt"`
}

type opayAmount struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type opayProduct struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type opayCreateResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		OrderNo    string `json:"orderNo"`
		CashierURL string `json:"cashierUrl"`
	} `json:"data"`
}

// Initialize opens an OPay cashier session for the payment.
func (p *OPayProvider) Initialize(ctx context.Context, req InitializeRequest) (Initialization, error) {
	if strings.TrimSpace(req.Reference) == "" {
		return Initialization{}, errors.New("opay: reference is required")
	}
	if req.Amount <= 0 {
		return Initialization{}, errors.New("opay: amount must be positive")
	}

	expiresAt := p.now().UTC().Add(opaySessionLifetime)
	payload := opayCreateRequest{
		Reference:    req.Reference,
		MchShortName: p.merchantID,
		Amount:       opayAmount{Total: req.Amount, Currency: strings.ToUpper(strings.TrimSpace(req.Currency))},
		Product:      opayProduct{Name: "Order " + req.OrderNumber},
		ExpireAt:     expiresAt.Unix(),
	}
	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		payload.UserInfo = map[string]any{"userEmail": email}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Initialization{}, fmt.Errorf("opay: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+opayCreatePath, bytes.NewReader(body))
	if err != nil {
		return Initialization{}, fmt.Errorf("opay: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.publicKey)
	httpReq.Header.Set("MerchantId", p.merchantID)
	httpReq.Header.Set("User-Agent", defaultOPayUserAgent)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger(ctx, "opay.create_failed", map[string]any{"reference": req.Reference, "error": err.Error()})
		return Initialization{}, fmt.Errorf("opay: create session: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		p.logger(ctx, "opay.create_failed", map[string]any{"reference": req.Reference, "status": resp.StatusCode})
		return Initialization{}, fmt.Errorf("opay: create session: unexpected status %d", resp.StatusCode)
	}

	var decoded opayCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Initialization{}, fmt.Errorf("opay: decode response: %w", err)
	}
	if decoded.Code != opaySuccessCode {
		p.logger(ctx, "opay.create_rejected", map[string]any{"reference": req.Reference, "code": decoded.Code, "message": decoded.Message})
		return Initialization{}, fmt.Errorf("opay: create session rejected: %s %s", decoded.Code, decoded.Message)
	}

	return Initialization{
		Provider:    opayProviderName,
		Reference:   req.Reference,
		ProviderRef: decoded.Data.OrderNo,
		RedirectURL: decoded.Data.CashierURL,
		ExpiresAt:   expiresAt,
	}, nil
}
