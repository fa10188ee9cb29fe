package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/auth"
	"github.com/zuricart/api/internal/platform/httpx"
	"github.com/zuricart/api/internal/services"
)

// WebhookHandler receives signed provider callbacks. The raw body is
// verified against the HMAC headers before any JSON parsing happens.
type WebhookHandler struct {
	payments  services.PaymentService
	validator *auth.HMACValidator
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(payments services.PaymentService, validator *auth.HMACValidator) *WebhookHandler {
	return &WebhookHandler{payments: payments, validator: validator}
}

type paymentCallback struct {
	Reference   string       `json:"reference"`
	Status      string       `json:"status"`
	Amount      domain.Money `json:"amount"`
	Currency    string       `json:"currency"`
	ProviderRef string       `json:"providerRef"`
}

// PaymentCallback responds to POST /webhooks/payments.
func (h *WebhookHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	signature := r.Header.Get(h.validator.SignatureHeader())
	timestamp := r.Header.Get(h.validator.TimestampHeader())
	if err := h.validator.Verify(signature, timestamp, body); err != nil {
		code := "signature_invalid"
		if errors.Is(err, auth.ErrSignatureMissing) {
			code = "signature_missing"
		} else if errors.Is(err, auth.ErrSignatureExpired) {
			code = "signature_expired"
		}
		httpx.WriteError(ctx, w, httpx.NewError(code, "webhook signature verification failed", http.StatusUnauthorized))
		return
	}

	var callback paymentCallback
	if err := json.Unmarshal(body, &callback); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_body", "callback body is not valid JSON", http.StatusBadRequest))
		return
	}

	payment, err := h.payments.Reconcile(ctx, services.ReconcileCommand{
		Reference:   callback.Reference,
		Status:      callback.Status,
		Amount:      callback.Amount,
		Currency:    callback.Currency,
		ProviderRef: callback.ProviderRef,
		Payload:     body,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toPaymentResponse(payment, ""), "callback processed")
}
