package trail

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// Event describes the interaction being recorded. Only the fields relevant to Kind are
// populated.
type Event struct {
	Kind             enums.TrailKind
	ProductName      string
	Rarity           enums.RarityLevel
	Quantity         int
	PreviousQuantity int
	RemovedCount     int
	Response         string
	Phase            enums.CheckoutPhase
	TransactionCode  string
	FailureKind      string
}

// Narrator turns an event into display text. It runs after the state change has been
// decided and never influences it.
type Narrator interface {
	Narrate(Event) string
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(Event) string

func (f NarratorFunc) Narrate(e Event) string { return f(e) }

var templates = map[enums.TrailKind][]string{
	enums.TrailKindItemAdded: {
		"%[1]s (%[2]s) slipped into the cart, x%[3]d",
		"The cart drew %[3]d of %[1]s closer, a %[2]s presence",
		"A %[2]s resonance: %[1]s x%[3]d joined the cart",
	},
	enums.TrailKindQuantityUpdated: {
		"%[1]s shifted from %[4]d to %[3]d",
		"The cart renegotiated %[1]s: %[4]d became %[3]d",
	},
	enums.TrailKindItemRemoved: {
		"%[1]s faded out of the cart",
		"The cart let go of %[1]s",
	},
	enums.TrailKindCartCleared: {
		"The cart emptied itself of %[5]d lines",
		"A clean slate: %[5]d lines released",
	},
	enums.TrailKindItemsSettled: {
		"%[5]d paid lines crossed over and left the cart",
		"The cart released %[5]d lines to their new owner",
	},
	enums.TrailKindQuestionAnswered: {
		"Intent confirmed for %[1]s (%[2]s): %[6]q",
		"The %[2]s %[1]s was questioned and answered: %[6]q",
	},
	enums.TrailKindCheckoutTransition: {
		"Checkout %[8]s entered %[7]s",
		"Transaction %[8]s crossed into %[7]s",
	},
}

type themedNarrator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewThemedNarrator picks a random template per event. A nil source seeds from the clock.
func NewThemedNarrator(src rand.Source) Narrator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &themedNarrator{rnd: rand.New(src)}
}

func (n *themedNarrator) Narrate(e Event) string {
	options := templates[e.Kind]
	if len(options) == 0 {
		return string(e.Kind)
	}
	n.mu.Lock()
	idx := n.rnd.Intn(len(options))
	n.mu.Unlock()

	text := fmt.Sprintf(options[idx],
		e.ProductName,
		e.Rarity,
		e.Quantity,
		e.PreviousQuantity,
		e.RemovedCount,
		e.Response,
		e.Phase,
		e.TransactionCode,
	)
	if e.Kind == enums.TrailKindCheckoutTransition && e.FailureKind != "" {
		text += fmt.Sprintf(" (%s)", e.FailureKind)
	}
	return text
}
