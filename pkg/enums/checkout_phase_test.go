package enums

import "testing"

func TestCheckoutPhaseOrderStatus(t *testing.T) {
	cases := map[CheckoutPhase]OrderStatus{
		CheckoutPhaseInitiating:      OrderStatusInitiating,
		CheckoutPhaseEnergyCheck:     OrderStatusInitiating,
		CheckoutPhasePortalOpening:   OrderStatusInitiating,
		CheckoutPhaseAwaitingPayment: OrderStatusInitiating,
		CheckoutPhaseSynchronizing:   OrderStatusSynchronizing,
		CheckoutPhaseCompleted:       OrderStatusCompleted,
		CheckoutPhaseFailed:          OrderStatusFailed,
		CheckoutPhaseCancelled:       OrderStatusCancelled,
	}
	for phase, want := range cases {
		if got := phase.OrderStatus(); got != want {
			t.Fatalf("phase %s expected status %s got %s", phase, want, got)
		}
	}
}

func TestCheckoutPhaseTerminal(t *testing.T) {
	for _, phase := range validCheckoutPhases {
		want := phase == CheckoutPhaseCompleted || phase == CheckoutPhaseFailed || phase == CheckoutPhaseCancelled
		if phase.IsTerminal() != want {
			t.Fatalf("phase %s terminal=%v", phase, phase.IsTerminal())
		}
	}
}

func TestRarityTier(t *testing.T) {
	rare := map[RarityLevel]bool{
		RarityCommon:    false,
		RarityUncommon:  false,
		RarityRare:      true,
		RarityLegendary: true,
		RarityMythic:    true,
	}
	for level, want := range rare {
		if level.IsRareTier() != want {
			t.Fatalf("rarity %s expected rare tier %v", level, want)
		}
	}
	if _, err := ParseRarityLevel("epic"); err == nil {
		t.Fatal("expected unknown rarity to fail")
	}
}
