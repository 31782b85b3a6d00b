package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/dimensionalz-backend/api/responses"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

type paymentConfirmer interface {
	ConfirmPayment(ctx context.Context, token string) (*models.Order, error)
}

// SandboxPaymentConfirm stands in for the provider webhook when the sandbox gateway
// is wired. It is only mounted outside production.
func SandboxPaymentConfirm(svc paymentConfirmer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required"))
			return
		}
		order, err := svc.ConfirmPayment(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order_id": order.ID,
			"phase":    order.Phase,
			"status":   order.Status,
		})
	}
}
