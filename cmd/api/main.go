package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zuricart/api/internal/handlers"
	"github.com/zuricart/api/internal/payments"
	"github.com/zuricart/api/internal/platform/auth"
	"github.com/zuricart/api/internal/platform/config"
	"github.com/zuricart/api/internal/platform/observability"
	"github.com/zuricart/api/internal/platform/pagination"
	platformpg "github.com/zuricart/api/internal/platform/postgres"
	repopg "github.com/zuricart/api/internal/repositories/postgres"
	"github.com/zuricart/api/internal/services"
	"github.com/zuricart/api/migrations"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := platformpg.Migrate(ctx, cfg.Database.URL, migrations.FS); err != nil {
		return err
	}

	provider, err := platformpg.NewProvider(ctx, platformpg.ProviderConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return err
	}
	defer provider.Close()

	store, err := repopg.NewStore(provider.Pool())
	if err != nil {
		return err
	}

	events := observability.EventLogger(logger)

	manager, err := buildPaymentManager(cfg.Payments, events)
	if err != nil {
		return err
	}

	calculator, err := services.NewCalculator(services.CalculatorConfig{
		VATRate:         cfg.Pricing.VATRate,
		FlatShippingFee: cfg.Pricing.FlatShippingFee,
	})
	if err != nil {
		return err
	}

	couponSvc, err := services.NewCouponService(services.CouponServiceDeps{
		Repo:   store.Coupons(),
		Logger: events,
	})
	if err != nil {
		return err
	}
	cartSvc, err := services.NewCartService(services.CartServiceDeps{
		Store:      store,
		Coupons:    couponSvc,
		Calculator: calculator,
		TTL:        cfg.Cart.TTL,
		Logger:     events,
	})
	if err != nil {
		return err
	}
	checkoutSvc, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Store:      store,
		Coupons:    couponSvc,
		Calculator: calculator,
		Logger:     events,
	})
	if err != nil {
		return err
	}
	orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
		Store:             store,
		Logger:            events,
		StrictTransitions: cfg.Orders.StrictAdminTransitions,
	})
	if err != nil {
		return err
	}
	paymentSvc, err := services.NewPaymentService(services.PaymentServiceDeps{
		Store:     store,
		Providers: manager,
		Currency:  cfg.Pricing.Currency,
		Logger:    events,
	})
	if err != nil {
		return err
	}
	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Repo:   store.Catalog(),
		Logger: events,
	})
	if err != nil {
		return err
	}
	addressSvc, err := services.NewAddressService(services.AddressServiceDeps{
		Repo:   store.Addresses(),
		Logger: events,
	})
	if err != nil {
		return err
	}

	authenticator, err := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	validator, err := auth.NewHMACValidator(auth.HMACValidatorConfig{
		Secret:          cfg.Webhooks.SigningSecret,
		SignatureHeader: cfg.Webhooks.SignatureHeader,
		TimestampHeader: cfg.Webhooks.TimestampHeader,
		ClockSkew:       cfg.Webhooks.ClockSkew,
	})
	if err != nil {
		return err
	}

	defaults := pagination.Defaults{
		Limit:    cfg.Pagination.DefaultLimit,
		MaxLimit: cfg.Pagination.MaxLimit,
	}
	router := handlers.NewRouter(handlers.RouterDeps{
		Logger:         logger,
		Authenticator:  authenticator,
		Health:         handlers.NewHealthHandler(store.Health()),
		Catalog:        handlers.NewCatalogHandler(catalogSvc, defaults),
		Addresses:      handlers.NewAddressHandler(addressSvc),
		Cart:           handlers.NewCartHandler(cartSvc),
		Orders:         handlers.NewOrderHandler(checkoutSvc, orderSvc, paymentSvc, defaults),
		Admin:          handlers.NewAdminHandler(orderSvc, couponSvc, catalogSvc, paymentSvc, defaults),
		Webhooks:       handlers.NewWebhookHandler(paymentSvc, validator),
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildPaymentManager(cfg config.PaymentsConfig, events func(context.Context, string, map[string]any)) (*payments.Manager, error) {
	var providers []payments.Provider

	if cfg.OPay.MerchantID != "" {
		opay, err := payments.NewOPayProvider(payments.OPayProviderConfig{
			BaseURL:    cfg.OPay.BaseURL,
			MerchantID: cfg.OPay.MerchantID,
			PublicKey:  cfg.OPay.PublicKey,
			Logger:     events,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, opay)
	}
	if cfg.Stripe.APIKey != "" {
		stripe, err := payments.NewStripeProvider(payments.StripeProviderConfig{
			APIKey:     cfg.Stripe.APIKey,
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
			Logger:     events,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, stripe)
	}

	return payments.NewManager(cfg.DefaultProvider, providers...)
}
