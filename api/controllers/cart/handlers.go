package cart

import (
	"net/http"

	cartdto "github.com/angelmondragon/dimensionalz-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/dimensionalz-backend/api/middleware"
	"github.com/angelmondragon/dimensionalz-backend/api/responses"
	"github.com/angelmondragon/dimensionalz-backend/api/validators"
	cartsvc "github.com/angelmondragon/dimensionalz-backend/internal/cart"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

const (
	defaultTrailLimit = 50
	maxTrailLimit     = 200
)

// CartFetch returns the caller's cart with freshly evaluated metrics.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		view, err := svc.GetCart(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewCartResponse(actor, view))
	})
}

// CartAddItem adds a product or merges the quantity into its existing line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.AddItem(r.Context(), actor, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, NewCartResponse(actor, view))
	})
}

func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartdto.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.UpdateQuantity(r.Context(), actor, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewCartResponse(actor, view))
	})
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.RemoveItem(r.Context(), actor, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewCartResponse(actor, view))
	})
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		view, err := svc.Clear(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewCartResponse(actor, view))
	})
}

// CartRespondToQuestion confirms a single rare line.
func CartRespondToQuestion(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartdto.QuestionResponseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.RespondToQuestion(r.Context(), actor, itemID, validators.SanitizeString(payload.Response, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewCartResponse(actor, view))
	})
}

// CartTrail returns the newest trail entries first.
func CartTrail(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withActor(svc, logg, func(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultTrailLimit, 1, maxTrailLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.Trail(r.Context(), actor, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"entries": newTrailResponse(entries)})
	})
}

func withActor(svc cartsvc.Service, logg *logger.Logger, fn func(http.ResponseWriter, *http.Request, identity.Actor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
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
