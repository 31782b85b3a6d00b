package checkout

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	"github.com/angelmondragon/dimensionalz-backend/pkg/money"
)

// TransactionNarrator writes the closing line stored on an order once it reaches a
// terminal phase.
type TransactionNarrator interface {
	Narrate(order models.Order) string
}

var closingTemplates = map[enums.CheckoutPhase][]string{
	enums.CheckoutPhaseCompleted: {
		"Ritual %[1]s sealed: %[2]d artifacts crossed over for %[3]s and %[4]d energy",
		"The exchange %[1]s resolved. %[2]d artifacts now answer to you",
	},
	enums.CheckoutPhaseFailed: {
		"Ritual %[1]s collapsed before completion (%[5]s)",
		"The portal for %[1]s closed unanswered (%[5]s)",
	},
	enums.CheckoutPhaseCancelled: {
		"Ritual %[1]s was called off before payment",
		"You withdrew from %[1]s; nothing crossed over",
	},
}

type themedNarrator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewThemedNarrator picks one template per terminal phase. A nil source seeds from the clock.
func NewThemedNarrator(src rand.Source) TransactionNarrator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &themedNarrator{rnd: rand.New(src)}
}

func (n *themedNarrator) Narrate(order models.Order) string {
	options := closingTemplates[order.Phase]
	if len(options) == 0 {
		return fmt.Sprintf("Ritual %s is %s", order.TransactionCode, order.Phase)
	}
	n.mu.Lock()
	idx := n.rnd.Intn(len(options))
	n.mu.Unlock()

	quantity := 0
	for _, item := range order.Items {
		quantity += item.Quantity
	}
	failure := "unknown"
	if order.FailureKind != nil {
		failure = *order.FailureKind
	}
	return fmt.Sprintf(options[idx],
		order.TransactionCode,
		quantity,
		money.FormatCents(order.TotalPriceCents, order.Currency),
		order.TotalEnergy,
		failure,
	)
}
