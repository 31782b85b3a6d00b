package orders

import (
	"net/http"
	"strings"

	checkoutcontrollers "github.com/angelmondragon/dimensionalz-backend/api/controllers/checkout"
	checkoutdto "github.com/angelmondragon/dimensionalz-backend/api/controllers/checkout/dto"
	"github.com/angelmondragon/dimensionalz-backend/api/middleware"
	"github.com/angelmondragon/dimensionalz-backend/api/responses"
	"github.com/angelmondragon/dimensionalz-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/dimensionalz-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
	"github.com/angelmondragon/dimensionalz-backend/pkg/pagination"
)

type listResponse struct {
	Orders     []checkoutdto.Order `json:"orders"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// List returns the caller's order history, newest first.
func List(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		page, err := svc.ListOrders(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := listResponse{Orders: make([]checkoutdto.Order, 0, len(page.Orders)), NextCursor: page.NextCursor}
		for i := range page.Orders {
			out.Orders = append(out.Orders, checkoutdto.NewOrder(&page.Orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// Detail returns one order after the service checks ownership.
func Detail(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		orderID, err := checkoutcontrollers.ParseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Status(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutdto.NewOrder(order))
	}
}
