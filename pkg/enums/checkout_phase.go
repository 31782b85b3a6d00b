package enums

import "fmt"

// CheckoutPhase is the fine-grained state of the checkout state machine.
type CheckoutPhase string

const (
	CheckoutPhaseReview          CheckoutPhase = "review"
	CheckoutPhaseInitiating      CheckoutPhase = "initiating"
	CheckoutPhaseEnergyCheck     CheckoutPhase = "energy_check"
	CheckoutPhasePortalOpening   CheckoutPhase = "portal_opening"
	CheckoutPhaseAwaitingPayment CheckoutPhase = "awaiting_payment"
	CheckoutPhaseSynchronizing   CheckoutPhase = "synchronizing"
	CheckoutPhaseCompleted       CheckoutPhase = "completed"
	CheckoutPhaseFailed          CheckoutPhase = "failed"
	CheckoutPhaseCancelled       CheckoutPhase = "cancelled"
)

var validCheckoutPhases = []CheckoutPhase{
	CheckoutPhaseReview,
	CheckoutPhaseInitiating,
	CheckoutPhaseEnergyCheck,
	CheckoutPhasePortalOpening,
	CheckoutPhaseAwaitingPayment,
	CheckoutPhaseSynchronizing,
	CheckoutPhaseCompleted,
	CheckoutPhaseFailed,
	CheckoutPhaseCancelled,
}

// TerminalCheckoutPhases lists the phases an order never leaves.
var TerminalCheckoutPhases = []CheckoutPhase{
	CheckoutPhaseCompleted,
	CheckoutPhaseFailed,
	CheckoutPhaseCancelled,
}

// String implements fmt.Stringer.
func (p CheckoutPhase) String() string {
	return string(p)
}

// IsValid reports whether the value is a known CheckoutPhase.
func (p CheckoutPhase) IsValid() bool {
	for _, candidate := range validCheckoutPhases {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (p CheckoutPhase) IsTerminal() bool {
	for _, candidate := range TerminalCheckoutPhases {
		if candidate == p {
			return true
		}
	}
	return false
}

// OrderStatus collapses the phase into the coarse order status.
func (p CheckoutPhase) OrderStatus() OrderStatus {
	switch p {
	case CheckoutPhaseSynchronizing:
		return OrderStatusSynchronizing
	case CheckoutPhaseCompleted:
		return OrderStatusCompleted
	case CheckoutPhaseFailed:
		return OrderStatusFailed
	case CheckoutPhaseCancelled:
		return OrderStatusCancelled
	default:
		return OrderStatusInitiating
	}
}

// ParseCheckoutPhase converts raw input into a CheckoutPhase.
func ParseCheckoutPhase(value string) (CheckoutPhase, error) {
	for _, candidate := range validCheckoutPhases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout phase %q", value)
}
