package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/dimensionalz-backend/api/controllers/cart"
	checkoutcontrollers "github.com/angelmondragon/dimensionalz-backend/api/controllers/checkout"
	ordercontrollers "github.com/angelmondragon/dimensionalz-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/dimensionalz-backend/api/controllers/webhooks"
	"github.com/angelmondragon/dimensionalz-backend/api/middleware"
	"github.com/angelmondragon/dimensionalz-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/dimensionalz-backend/internal/checkout"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	"github.com/angelmondragon/dimensionalz-backend/internal/oracle"
	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	Ping(context.Context) error
}

type actorResolver interface {
	Actor(ctx context.Context, userID uuid.UUID) (identity.Actor, error)
}

type oracleService interface {
	List(ctx context.Context, severity string, limit int) ([]models.OracleLog, error)
	Stats(ctx context.Context) (oracle.Stats, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	Products(ctx context.Context, limit int) ([]models.Product, error)
}

type stripeClient interface {
	SigningSecret() string
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	PubSub   controllers.Pinger
	Identity actorResolver
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Oracle   oracleService

	// Stripe webhook wiring is optional; the route is mounted only when all three are set.
	StripeClient         stripeClient
	StripeWebhookService webhookcontrollers.StripeWebhookService
	StripeWebhookGuard   stripeWebhookGuard

	// SandboxPayments mounts a manual confirm route outside production.
	SandboxPayments bool
	Metrics         http.Handler
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	deps := map[string]controllers.Pinger{}
	if params.DB != nil {
		deps["db"] = params.DB
	}
	if params.Redis != nil {
		deps["redis"] = params.Redis
	}
	if params.PubSub != nil {
		deps["pubsub"] = params.PubSub
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics)
	}

	if params.StripeWebhookService != nil && params.StripeClient != nil && params.StripeWebhookGuard != nil {
		r.Route("/api/v1/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(params.StripeWebhookService, params.StripeClient, params.StripeWebhookGuard, logg))
		})
	}

	initiatePolicy := middleware.NewRateLimitPolicy("checkout_initiate", cfg.Checkout.InitiateWindow, int(cfg.Checkout.InitiateLimit))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.ActorContext(params.Identity, logg))
		if params.Redis != nil {
			r.Use(middleware.Idempotency(params.Redis, logg))
		}

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(params.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(params.Cart, logg))
			r.Get("/trail", cartcontrollers.CartTrail(params.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(params.Cart, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(params.Cart, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(params.Cart, logg))
			r.Post("/items/{itemId}/question", cartcontrollers.CartRespondToQuestion(params.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/review", checkoutcontrollers.CheckoutReview(params.Checkout, logg))
			initiate := checkoutcontrollers.CheckoutInitiate(params.Checkout, logg)
			if params.Redis != nil {
				r.With(middleware.RateLimit(initiatePolicy, params.Redis, logg)).Post("/", initiate)
			} else {
				r.Post("/", initiate)
			}
			r.Get("/{orderId}", checkoutcontrollers.CheckoutStatus(params.Checkout, logg))
			r.Post("/{orderId}/session", checkoutcontrollers.CheckoutCreateSession(params.Checkout, logg))
			r.Post("/{orderId}/cancel", checkoutcontrollers.CheckoutCancel(params.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(params.Checkout, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(params.Checkout, logg))
		})

		r.Route("/oracle", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Get("/logs", controllers.OracleLogs(params.Oracle, logg))
			r.Get("/stats", controllers.OracleStats(params.Oracle, logg))
			r.Get("/orders", controllers.OracleOrders(params.Oracle, logg))
			r.Get("/products", controllers.OracleProducts(params.Oracle, logg))
		})

		if params.SandboxPayments && !cfg.App.IsProd() {
			r.Post("/dev/payments/{token}/confirm", controllers.SandboxPaymentConfirm(params.Checkout, logg))
		}
	})

	return r
}
