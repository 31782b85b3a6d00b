package cart

import (
	cartdto "github.com/angelmondragon/dimensionalz-backend/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/dimensionalz-backend/internal/cart"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/money"
)

// NewCartResponse renders a cart view for the API.
func NewCartResponse(actor identity.Actor, view *cartsvc.View) cartdto.Cart {
	out := cartdto.Cart{
		Items:         []cartdto.CartItem{},
		EnergyBalance: actor.EnergyBalance,
		TotalPrice:    money.Amount(0),
		CanAfford:     true,
	}
	if view == nil {
		return out
	}
	out.ID = view.CartID
	out.Version = view.Version
	out.Metrics = view.Evaluation
	out.TotalPrice = money.Amount(view.Evaluation.TotalPriceCents)
	out.CanAfford = view.CanAfford
	for _, item := range view.Items {
		out.Items = append(out.Items, cartdto.CartItem{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPriceCents:   item.UnitPriceCents,
			UnitPrice:        money.Amount(item.UnitPriceCents),
			UnitEnergyCost:   item.UnitEnergyCost,
			LineTotalCents:   item.UnitPriceCents * int64(item.Quantity),
			RarityLevel:      item.RarityLevel,
			WasQuestioned:    item.WasQuestioned,
			QuestionResponse: item.QuestionResponse,
			CreatedAt:        item.CreatedAt,
		})
	}
	return out
}

func newTrailResponse(entries []models.TrailEntry) []cartdto.TrailEntry {
	out := make([]cartdto.TrailEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, cartdto.TrailEntry{
			ID:        entry.ID,
			Kind:      entry.Kind,
			Narrative: entry.Narrative,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}
