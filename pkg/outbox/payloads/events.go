package payloads

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// OrderTransitionEvent is emitted every time an order enters a phase that
// downstream consumers care about.
type OrderTransitionEvent struct {
	OrderID         uuid.UUID           `json:"order_id"`
	OwnerID         uuid.UUID           `json:"owner_id"`
	CartID          uuid.UUID           `json:"cart_id"`
	TransactionCode string              `json:"transaction_code"`
	Phase           enums.CheckoutPhase `json:"phase"`
	Status          enums.OrderStatus   `json:"status"`
	TotalPriceCents int64               `json:"total_price_cents"`
	TotalEnergy     int64               `json:"total_energy"`
	Currency        string              `json:"currency"`
	FailureKind     string              `json:"failure_kind,omitempty"`
	FailureMessage  string              `json:"failure_message,omitempty"`
}

// PaymentAfterCloseEvent flags a payment confirmation that arrived for an
// order that was already cancelled or failed. Someone has to refund it.
type PaymentAfterCloseEvent struct {
	OrderID          uuid.UUID           `json:"order_id"`
	OwnerID          uuid.UUID           `json:"owner_id"`
	TransactionCode  string              `json:"transaction_code"`
	Phase            enums.CheckoutPhase `json:"phase"`
	PaymentSessionID string              `json:"payment_session_id,omitempty"`
}
