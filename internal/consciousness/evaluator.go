// Package consciousness derives cart metrics and the rare-item gating decision from the
// current line items. Everything here is pure and safe for concurrent use.
package consciousness

import "github.com/angelmondragon/dimensionalz-backend/pkg/enums"

const (
	// MaxLevel caps the consciousness level.
	MaxLevel = 10
	// QuestionThreshold is the number of unconfirmed rare-tier lines that triggers gating.
	QuestionThreshold = 3

	rareLineWeight = 2
	energyPerLevel = 100
)

// Item is the evaluator's view of one cart line.
type Item struct {
	Quantity       int
	UnitPriceCents int64
	UnitEnergyCost int64
	Rarity         enums.RarityLevel
	WasQuestioned  bool
}

// Evaluation is recomputed on every read and never persisted.
type Evaluation struct {
	ConsciousnessLevel    int   `json:"consciousness_level"`
	ItemCount             int   `json:"item_count"`
	RareItemCount         int   `json:"rare_item_count"`
	UnquestionedRareCount int   `json:"unquestioned_rare_count"`
	TotalEnergy           int64 `json:"total_energy"`
	TotalPriceCents       int64 `json:"total_price_cents"`
	ShouldQuestion        bool  `json:"should_question"`
}

// Evaluate computes the derived metrics for items.
//
// Rare-tier lines are counted once per distinct line regardless of quantity, both for
// RareItemCount and for the gating threshold. Lines with a non-positive quantity are
// ignored.
func Evaluate(items []Item) Evaluation {
	var out Evaluation
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		qty := int64(item.Quantity)
		out.ItemCount++
		out.TotalPriceCents += item.UnitPriceCents * qty
		out.TotalEnergy += item.UnitEnergyCost * qty
		if item.Rarity.IsRareTier() {
			out.RareItemCount++
			if !item.WasQuestioned {
				out.UnquestionedRareCount++
			}
		}
	}
	out.ConsciousnessLevel = level(out.ItemCount, out.RareItemCount, out.TotalEnergy)
	out.ShouldQuestion = out.UnquestionedRareCount >= QuestionThreshold
	return out
}

// CanAfford reports whether balance covers the evaluated energy total.
func (e Evaluation) CanAfford(balance int64) bool {
	return e.TotalEnergy <= balance
}

func level(lines, rare int, energy int64) int {
	if lines == 0 {
		return 0
	}
	if energy < 0 {
		energy = 0
	}
	score := int64(lines) + int64(rareLineWeight*rare) + energy/energyPerLevel
	if score > MaxLevel {
		return MaxLevel
	}
	return int(score)
}
