package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

// metadataTokenKey is the checkout session metadata entry carrying the order's
// idempotency token.
const metadataTokenKey = "idempotency_token"

type checkoutPayments interface {
	ConfirmPayment(ctx context.Context, token string) (*models.Order, error)
	ExpirePayment(ctx context.Context, token string) (*models.Order, error)
}

type ServiceParams struct {
	Checkout checkoutPayments
	Logger   *logger.Logger
}

// Service routes Stripe checkout session events to the checkout orchestrator.
type Service struct {
	checkout checkoutPayments
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{checkout: params.Checkout, logg: params.Logger}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"stripe_event_id":   event.ID,
		"stripe_event_type": string(event.Type),
	})

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionExpired:
	default:
		s.logg.Debug(ctx, "stripe.webhook.ignored")
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
	}
	token := strings.TrimSpace(session.Metadata[metadataTokenKey])
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no idempotency token").
			WithDetails(map[string]any{"session_id": session.ID})
	}
	ctx = s.logg.WithField(ctx, "payment_session_id", session.ID)
	s.logg.Info(ctx, "stripe.webhook.received")

	var (
		order *models.Order
		err   error
	)
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		// delayed payment methods complete the session unpaid and settle later
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			s.logg.Info(ctx, "stripe.webhook.awaiting_async_payment")
			return nil
		}
		order, err = s.checkout.ConfirmPayment(ctx, token)
	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		order, err = s.checkout.ConfirmPayment(ctx, token)
	case stripe.EventTypeCheckoutSessionExpired:
		order, err = s.checkout.ExpirePayment(ctx, token)
	}
	if err != nil {
		return err
	}
	if order != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"phase":    string(order.Phase),
		})
	}
	s.logg.Info(ctx, "stripe.webhook.applied")
	return nil
}
