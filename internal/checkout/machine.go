package checkout

import "github.com/angelmondragon/dimensionalz-backend/pkg/enums"

// predecessors lists, for each target phase, the phases an order may leave to reach it.
// review is never persisted; an order is born in initiating.
var predecessors = map[enums.CheckoutPhase][]enums.CheckoutPhase{
	enums.CheckoutPhaseEnergyCheck:     {enums.CheckoutPhaseInitiating},
	enums.CheckoutPhasePortalOpening:   {enums.CheckoutPhaseEnergyCheck},
	enums.CheckoutPhaseAwaitingPayment: {enums.CheckoutPhasePortalOpening},
	enums.CheckoutPhaseSynchronizing:   {enums.CheckoutPhaseAwaitingPayment},
	enums.CheckoutPhaseCompleted:       {enums.CheckoutPhaseSynchronizing},
	enums.CheckoutPhaseCancelled:       {enums.CheckoutPhaseAwaitingPayment},
	enums.CheckoutPhaseFailed: {
		enums.CheckoutPhaseInitiating,
		enums.CheckoutPhaseEnergyCheck,
		enums.CheckoutPhasePortalOpening,
		enums.CheckoutPhaseAwaitingPayment,
		enums.CheckoutPhaseSynchronizing,
	},
}

// outboxEvents names the domain event emitted when an order enters a phase.
var outboxEvents = map[enums.CheckoutPhase]enums.OutboxEventType{
	enums.CheckoutPhaseInitiating:      enums.EventOrderInitiated,
	enums.CheckoutPhaseAwaitingPayment: enums.EventOrderAwaitingPayment,
	enums.CheckoutPhaseCompleted:       enums.EventOrderCompleted,
	enums.CheckoutPhaseFailed:          enums.EventOrderFailed,
	enums.CheckoutPhaseCancelled:       enums.EventOrderCancelled,
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to enums.CheckoutPhase) bool {
	for _, candidate := range predecessors[to] {
		if candidate == from {
			return true
		}
	}
	return false
}

// prePaymentPhases are the phases bounded by the portal TTL.
var prePaymentPhases = []enums.CheckoutPhase{
	enums.CheckoutPhaseInitiating,
	enums.CheckoutPhaseEnergyCheck,
	enums.CheckoutPhasePortalOpening,
}
