package enums

import "fmt"

// TrailKind identifies which interaction produced a trail entry.
type TrailKind string

const (
	TrailKindItemAdded          TrailKind = "item_added"
	TrailKindQuantityUpdated    TrailKind = "quantity_updated"
	TrailKindItemRemoved        TrailKind = "item_removed"
	TrailKindCartCleared        TrailKind = "cart_cleared"
	TrailKindItemsSettled       TrailKind = "items_settled"
	TrailKindQuestionAnswered   TrailKind = "question_answered"
	TrailKindCheckoutTransition TrailKind = "checkout_transition"
)

var validTrailKinds = []TrailKind{
	TrailKindItemAdded,
	TrailKindQuantityUpdated,
	TrailKindItemRemoved,
	TrailKindCartCleared,
	TrailKindItemsSettled,
	TrailKindQuestionAnswered,
	TrailKindCheckoutTransition,
}

func (k TrailKind) String() string {
	return string(k)
}

func (k TrailKind) IsValid() bool {
	for _, candidate := range validTrailKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseTrailKind(value string) (TrailKind, error) {
	for _, candidate := range validTrailKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trail kind %q", value)
}
