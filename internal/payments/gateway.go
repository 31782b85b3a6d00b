package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Gateway is the payment collaborator used by checkout. Implementations must
// honour ctx cancellation; the caller owns the timeout.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	ExpireSession(ctx context.Context, sessionID string) error
}

// SessionLine is one priced line shown on the hosted payment page.
type SessionLine struct {
	Name            string
	Description     string
	Quantity        int64
	UnitAmountCents int64
}

// SessionRequest describes the payment session for one order.
type SessionRequest struct {
	OrderID          uuid.UUID
	IdempotencyToken string
	TransactionCode  string
	Currency         string
	Lines            []SessionLine
}

// Validate checks the request before it leaves the process.
func (r SessionRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return errors.New("order id is required")
	}
	if r.IdempotencyToken == "" {
		return errors.New("idempotency token is required")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	if len(r.Lines) == 0 {
		return errors.New("at least one line is required")
	}
	for _, line := range r.Lines {
		if line.Quantity <= 0 || line.UnitAmountCents < 0 {
			return errors.New("session lines need a positive quantity and non-negative amount")
		}
	}
	return nil
}

// Session is the created payment session.
type Session struct {
	ID  string
	URL string
}

// ProviderError carries the collaborator's own message so callers can show it as is.
type ProviderError struct {
	Message string
	Code    string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "payment provider error"
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
