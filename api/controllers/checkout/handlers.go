package checkout

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartcontrollers "github.com/angelmondragon/dimensionalz-backend/api/controllers/cart"
	checkoutdto "github.com/angelmondragon/dimensionalz-backend/api/controllers/checkout/dto"
	"github.com/angelmondragon/dimensionalz-backend/api/middleware"
	"github.com/angelmondragon/dimensionalz-backend/api/responses"
	"github.com/angelmondragon/dimensionalz-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/dimensionalz-backend/internal/checkout"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

const idempotencyHeader = "Idempotency-Key"

// CheckoutReview returns the cart as checkout will see it, with the blockers that
// would stop an initiate.
func CheckoutReview(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		review, err := svc.Review(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart := cartcontrollers.NewCartResponse(actor, review.Cart)
		blockers := make([]string, 0, 3)
		if review.Empty {
			blockers = append(blockers, "empty_cart")
		}
		if cart.Metrics.ShouldQuestion {
			blockers = append(blockers, "question_pending")
		}
		if !cart.CanAfford {
			blockers = append(blockers, "insufficient_energy")
		}
		responses.WriteSuccess(w, map[string]any{
			"cart":         cart,
			"empty":        review.Empty,
			"blockers":     blockers,
			"can_initiate": len(blockers) == 0,
		})
	})
}

// CheckoutInitiate opens a checkout for the caller's cart. The token comes from the
// Idempotency-Key header, or the request body when the header is absent.
func CheckoutInitiate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		var payload checkoutdto.InitiateRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		token := strings.TrimSpace(r.Header.Get(idempotencyHeader))
		if token == "" {
			token = strings.TrimSpace(payload.IdempotencyToken)
		}

		order, err := svc.Initiate(r.Context(), actor, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutdto.NewOrder(order))
	})
}

// CheckoutCreateSession opens, or returns the already opened, payment session.
func CheckoutCreateSession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error) {
		return svc.CreateSession(ctx, actor, orderID)
	})
}

func CheckoutCancel(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error) {
		return svc.Cancel(ctx, actor, orderID)
	})
}

// CheckoutStatus reads one of the caller's orders.
func CheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error) {
		return svc.Status(ctx, actor, orderID)
	})
}

type orderAction func(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error)

func withOrder(svc checkoutsvc.Service, logg *logger.Logger, action orderAction) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		orderID, err := ParseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID.String())
		}
		order, err := action(ctx, actor, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutdto.NewOrder(order))
	})
}

func withActor(svc checkoutsvc.Service, logg *logger.Logger, fn func(http.ResponseWriter, *http.Request, identity.Actor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fn(w, r, actor)
	}
}

// ParseOrderID reads the {orderId} route parameter.
func ParseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}
