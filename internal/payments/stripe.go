package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
	pkgstripe "github.com/angelmondragon/dimensionalz-backend/pkg/stripe"
)

// SessionAPI is the subset of Stripe Checkout used by the gateway.
type SessionAPI interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	Expire(ctx context.Context, id string, params *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error)
}

// NewStripeSessionAPI returns the checkout sessions service of the configured client.
func NewStripeSessionAPI(client *pkgstripe.Client) SessionAPI {
	api := client.API()
	if api == nil || api.V1CheckoutSessions == nil {
		return nil
	}
	return api.V1CheckoutSessions
}

// StripeGateway creates hosted Stripe Checkout sessions in payment mode.
type StripeGateway struct {
	api        SessionAPI
	successURL string
	cancelURL  string
}

// NewStripeGateway wires the gateway to the configured redirect URLs.
func NewStripeGateway(api SessionAPI, cfg config.CheckoutConfig) (*StripeGateway, error) {
	if api == nil {
		return nil, errors.New("stripe session api is required")
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" || strings.TrimSpace(cfg.CancelURL) == "" {
		return nil, errors.New("checkout success and cancel urls are required")
	}
	return &StripeGateway{
		api:        api,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}, nil
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	if err := req.Validate(); err != nil {
		return Session{}, err
	}
	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(req.OrderID.String()),
	}
	currency := strings.ToLower(req.Currency)
	for _, line := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionCreateLineItemParams{
			Quantity: stripe.Int64(line.Quantity),
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(line.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name:        stripe.String(line.Name),
					Description: optionalString(line.Description),
				},
			},
		})
	}
	params.AddMetadata("order_id", req.OrderID.String())
	params.AddMetadata("idempotency_token", req.IdempotencyToken)
	if req.TransactionCode != "" {
		params.AddMetadata("transaction_code", req.TransactionCode)
	}
	params.SetIdempotencyKey(req.IdempotencyToken)

	created, err := g.api.Create(ctx, params)
	if err != nil {
		return Session{}, translateStripeError(err)
	}
	if created == nil || created.ID == "" || created.URL == "" {
		return Session{}, &ProviderError{Message: "stripe returned an incomplete checkout session"}
	}
	return Session{ID: created.ID, URL: created.URL}, nil
}

func (g *StripeGateway) ExpireSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	if _, err := g.api.Expire(ctx, sessionID, nil); err != nil {
		return translateStripeError(err)
	}
	return nil
}

// translateStripeError keeps context errors intact so the caller can tell a
// deadline apart from a provider rejection.
func translateStripeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProviderError{
			Message: stripeErr.Msg,
			Code:    string(stripeErr.Code),
			Err:     err,
		}
	}
	return &ProviderError{Message: fmt.Sprintf("stripe request failed: %v", err), Err: err}
}

func optionalString(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return stripe.String(v)
}
