// Package bootstrap assembles the cart and checkout stack shared by the api and
// cron-worker processes.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/dimensionalz-backend/internal/cart"
	"github.com/angelmondragon/dimensionalz-backend/internal/catalog"
	"github.com/angelmondragon/dimensionalz-backend/internal/checkout"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	"github.com/angelmondragon/dimensionalz-backend/internal/oracle"
	"github.com/angelmondragon/dimensionalz-backend/internal/payments"
	"github.com/angelmondragon/dimensionalz-backend/internal/trail"
	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
	"github.com/angelmondragon/dimensionalz-backend/pkg/metrics"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox"
	pkgstripe "github.com/angelmondragon/dimensionalz-backend/pkg/stripe"
)

type CheckoutStackParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Registry prometheus.Registerer
}

// CheckoutStack holds the wired domain services. Stripe is nil when the sandbox
// gateway is in use.
type CheckoutStack struct {
	Identity *identity.Provider
	Catalog  *catalog.Service
	Oracle   *oracle.Service
	Trail    *trail.Recorder
	Outbox   *outbox.Service
	Cart     cart.Service
	Checkout checkout.Service
	Payments payments.Gateway
	Stripe   *pkgstripe.Client
	Sandbox  bool
}

func NewCheckoutStack(ctx context.Context, params CheckoutStackParams) (*CheckoutStack, error) {
	cfg := params.Config
	logg := params.Logger
	if cfg == nil || logg == nil || params.DB == nil {
		return nil, fmt.Errorf("config, logger and db are required")
	}
	gormDB := params.DB.DB()

	identityProvider, err := identity.NewProvider(identity.NewRepository(gormDB))
	if err != nil {
		return nil, fmt.Errorf("identity provider: %w", err)
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB))
	if err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}
	oracleService, err := oracle.NewService(oracle.NewRepository(gormDB))
	if err != nil {
		return nil, fmt.Errorf("oracle service: %w", err)
	}
	trailRecorder, err := trail.NewRecorder(trail.RecorderParams{Repository: trail.NewRepository(gormDB)})
	if err != nil {
		return nil, fmt.Errorf("trail recorder: %w", err)
	}
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repository: cart.NewRepository(gormDB),
		Tx:         params.DB,
		Catalog:    catalogService,
		Trail:      trailRecorder,
		Oracle:     oracleService,
		Logger:     logg,
	})
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	stack := &CheckoutStack{
		Identity: identityProvider,
		Catalog:  catalogService,
		Oracle:   oracleService,
		Trail:    trailRecorder,
		Outbox:   outboxService,
		Cart:     cartService,
	}
	if err := stack.wirePayments(ctx, cfg, logg); err != nil {
		return nil, err
	}

	var checkoutMetrics *metrics.CheckoutMetrics
	if params.Registry != nil {
		checkoutMetrics = metrics.NewCheckoutMetrics(params.Registry)
	}
	svcParams := checkout.ServiceParams{
		Repository: checkout.NewRepository(gormDB),
		Tx:         params.DB,
		Carts:      cartService,
		Catalog:    catalogService,
		Payments:   stack.Payments,
		Trail:      trailRecorder,
		Outbox:     outboxService,
		Oracle:     oracleService,
		Config:     cfg.Checkout,
		Logger:     logg,
	}
	if checkoutMetrics != nil {
		svcParams.Metrics = checkoutMetrics
	}
	checkoutService, err := checkout.NewService(svcParams)
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}
	stack.Checkout = checkoutService
	return stack, nil
}

// wirePayments picks Stripe when an API key is configured. Outside production a missing
// key falls back to the in-process sandbox gateway.
func (s *CheckoutStack) wirePayments(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	if strings.TrimSpace(cfg.Stripe.APIKey) == "" && !cfg.App.IsProd() {
		logg.Warn(ctx, "stripe api key not set, using sandbox payment gateway")
		s.Payments = payments.NewSandboxGateway(SandboxBaseURL(cfg))
		s.Sandbox = true
		return nil
	}

	client, err := pkgstripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return fmt.Errorf("stripe client: %w", err)
	}
	gateway, err := payments.NewStripeGateway(payments.NewStripeSessionAPI(client), cfg.Checkout)
	if err != nil {
		return fmt.Errorf("stripe gateway: %w", err)
	}
	s.Stripe = client
	s.Payments = gateway
	return nil
}

// SandboxBaseURL is where sandbox checkout links point.
func SandboxBaseURL(cfg *config.Config) string {
	port := strings.TrimSpace(cfg.App.Port)
	if port == "" {
		port = "8080"
	}
	return "http://localhost:" + port
}
