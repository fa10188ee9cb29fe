package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/payments"
	"github.com/zuricart/api/internal/repositories"
)

// PaymentServiceDeps wires the payment service.
type PaymentServiceDeps struct {
	Store     repositories.Registry
	Providers *payments.Manager
	Currency  string
	Clock     Clock
	Logger    Logger
	// Reference mints a unique payment reference. Defaults to a ULID-based
	// generator.
	Reference func() string
}

type paymentService struct {
	store     repositories.Registry
	providers *payments.Manager
	currency  string
	clock     Clock
	logger    Logger
	reference func() string
}

// NewPaymentService validates deps and returns the payment service.
func NewPaymentService(deps PaymentServiceDeps) (*paymentService, error) {
	if deps.Store == nil {
		return nil, errors.New("payment service: store is required")
	}
	if deps.Providers == nil {
		return nil, errors.New("payment service: provider manager is required")
	}
	if deps.Currency == "" {
		deps.Currency = "NGN"
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	if deps.Reference == nil {
		deps.Reference = defaultPaymentReference(deps.Clock)
	}
	return &paymentService{
		store:     deps.Store,
		providers: deps.Providers,
		currency:  deps.Currency,
		clock:     deps.Clock,
		logger:    deps.Logger,
		reference: deps.Reference,
	}, nil
}

func defaultPaymentReference(clock Clock) func() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(clock().UnixNano())), 0)
	return func() string {
		return "PAY-" + ulid.MustNew(ulid.Timestamp(clock()), entropy).String()
	}
}

// Initialize opens a PENDING payment against an order and hands the caller
// the provider's redirect URL. Orders that already settled are rejected.
func (s *paymentService) Initialize(ctx context.Context, cmd InitializePaymentCommand) (PaymentInitView, error) {
	if cmd.UserID == "" {
		return PaymentInitView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	order, err := s.store.Orders().FindForOwner(ctx, cmd.OrderID, cmd.UserID)
	if err != nil {
		return PaymentInitView{}, translateRepoError(err, ErrOrderNotFound)
	}
	if order.Status != domain.OrderStatusPending {
		return PaymentInitView{}, fmt.Errorf("%w: status %s", ErrOrderNotPayable, order.Status)
	}
	settled, err := s.store.Payments().HasSuccessForOrder(ctx, order.ID)
	if err != nil {
		return PaymentInitView{}, translateRepoError(err, ErrPaymentNotFound)
	}
	if settled {
		return PaymentInitView{}, ErrOrderNotPayable
	}

	reference := s.reference()
	init, err := s.providers.Initialize(ctx, cmd.Provider, payments.InitializeRequest{
		Reference:     reference,
		OrderNumber:   order.OrderNumber,
		Amount:        order.Total,
		Currency:      s.currency,
		CustomerEmail: cmd.Email,
	})
	if err != nil {
		if errors.Is(err, payments.ErrUnsupportedProvider) {
			return PaymentInitView{}, fmt.Errorf("%w: unknown payment provider %q", ErrInvalidInput, cmd.Provider)
		}
		return PaymentInitView{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	payment, err := s.store.Payments().Insert(ctx, domain.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Reference:   reference,
		Provider:    init.Provider,
		Amount:      order.Total,
		Currency:    s.currency,
		Status:      domain.PaymentStatusPending,
		ProviderRef: init.ProviderRef,
	})
	if err != nil {
		return PaymentInitView{}, translateRepoError(err, ErrPaymentNotFound)
	}
	s.logger(ctx, "payment.initialized", map[string]any{
		"payment_id": payment.ID.String(),
		"order_id":   order.ID.String(),
		"provider":   init.Provider,
		"amount":     payment.Amount,
	})
	return PaymentInitView{Payment: payment, RedirectURL: init.RedirectURL, ExpiresAt: init.ExpiresAt}, nil
}

// Reconcile applies a provider callback. An unknown reference is an error,
// an amount or currency mismatch is rejected without touching the payment,
// and a repeated SUCCESS for an already settled payment is a no-op so
// providers may retry callbacks freely.
func (s *paymentService) Reconcile(ctx context.Context, cmd ReconcileCommand) (domain.Payment, error) {
	reference := strings.TrimSpace(cmd.Reference)
	if reference == "" {
		return domain.Payment{}, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}
	status, ok := parseCallbackStatus(cmd.Status)
	if !ok {
		return domain.Payment{}, fmt.Errorf("%w: unknown callback status %q", ErrInvalidInput, cmd.Status)
	}

	payment, err := s.store.Payments().FindByReference(ctx, reference)
	if err != nil {
		return domain.Payment{}, translateRepoError(err, ErrPaymentNotFound)
	}
	if cmd.Amount != payment.Amount || !strings.EqualFold(cmd.Currency, payment.Currency) {
		s.logger(ctx, "payment.mismatch", map[string]any{
			"payment_id":      payment.ID.String(),
			"expected_amount": payment.Amount,
			"got_amount":      cmd.Amount,
			"got_currency":    cmd.Currency,
		})
		return domain.Payment{}, fmt.Errorf("%w: reference %s", ErrPaymentAmountMismatch, reference)
	}
	if payment.Status == domain.PaymentStatusSuccess {
		// Already settled; providers retry callbacks.
		s.logger(ctx, "payment.duplicate_callback", map[string]any{"payment_id": payment.ID.String()})
		return payment, nil
	}
	if payment.Status == domain.PaymentStatusRefunded {
		return domain.Payment{}, fmt.Errorf("%w: reference %s", ErrPaymentAlreadyRefunded, reference)
	}

	now := s.clock()
	var lostRace bool
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		var paidAt *time.Time
		if status == domain.PaymentStatusSuccess {
			paidAt = &now
		}
		// The write carries its own settled guard, so two concurrent
		// deliveries for the same reference cannot overwrite each other.
		ok, err := s.store.Payments().Settle(ctx, payment.ID, status, cmd.ProviderRef, paidAt)
		if err != nil {
			return translateRepoError(err, ErrPaymentNotFound)
		}
		if !ok {
			lostRace = true
			return nil
		}
		if err := s.store.Payments().InsertEvent(ctx, domain.PaymentEvent{
			ID:        uuid.New(),
			PaymentID: payment.ID,
			Payload:   cmd.Payload,
		}); err != nil {
			return translateRepoError(err, ErrPaymentNotFound)
		}
		if status != domain.PaymentStatusSuccess {
			return nil
		}
		order, err := s.store.Orders().FindByID(ctx, payment.OrderID)
		if err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		if order.Status == domain.OrderStatusPending {
			if err := s.store.Orders().UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed); err != nil {
				return translateRepoError(err, ErrOrderNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}
	if lostRace {
		current, err := s.store.Payments().FindByID(ctx, payment.ID)
		if err != nil {
			return domain.Payment{}, translateRepoError(err, ErrPaymentNotFound)
		}
		if current.Status == domain.PaymentStatusRefunded {
			return domain.Payment{}, fmt.Errorf("%w: reference %s", ErrPaymentAlreadyRefunded, reference)
		}
		s.logger(ctx, "payment.duplicate_callback", map[string]any{"payment_id": payment.ID.String()})
		return current, nil
	}

	payment.Status = status
	payment.UpdatedAt = now
	if status == domain.PaymentStatusSuccess {
		payment.PaidAt = &now
	}
	if cmd.ProviderRef != "" {
		payment.ProviderRef = cmd.ProviderRef
	}
	s.logger(ctx, "payment.reconciled", map[string]any{
		"payment_id": payment.ID.String(),
		"order_id":   payment.OrderID.String(),
		"status":     string(status),
	})
	return payment, nil
}

// Refund marks a successful payment and its order as refunded in one
// transaction. Anything other than a SUCCESS payment is rejected.
func (s *paymentService) Refund(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, translateRepoError(err, ErrPaymentNotFound)
	}
	if payment.Status != domain.PaymentStatusSuccess {
		return domain.Payment{}, fmt.Errorf("%w: status %s", ErrPaymentNotRefundable, payment.Status)
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.store.Payments().MarkRefunded(ctx, payment.ID)
		if err != nil {
			return translateRepoError(err, ErrPaymentNotFound)
		}
		if !ok {
			// Status moved between the read and the write.
			return fmt.Errorf("%w: payment is no longer successful", ErrPaymentNotRefundable)
		}
		if err := s.store.Orders().UpdateStatus(ctx, payment.OrderID, domain.OrderStatusRefunded); err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}
	payment.Status = domain.PaymentStatusRefunded
	payment.UpdatedAt = s.clock()
	s.logger(ctx, "payment.refunded", map[string]any{"payment_id": payment.ID.String(), "order_id": payment.OrderID.String()})
	return payment, nil
}

// parseCallbackStatus folds the status vocabulary the providers use into the
// two terminal callback outcomes.
func parseCallbackStatus(raw string) (domain.PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "successful", "paid":
		return domain.PaymentStatusSuccess, true
	case "failed", "fail", "close", "cancelled":
		return domain.PaymentStatusFailed, true
	}
	return "", false
}
