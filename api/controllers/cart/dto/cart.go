package cartdto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/internal/consciousness"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// Cart is the cart read exposed through the API, metrics included.
type Cart struct {
	ID            uuid.UUID                `json:"id"`
	Version       int64                    `json:"version"`
	Items         []CartItem               `json:"items"`
	Metrics       consciousness.Evaluation `json:"metrics"`
	TotalPrice    string                   `json:"total_price"`
	EnergyBalance int64                    `json:"energy_balance"`
	CanAfford     bool                     `json:"can_afford"`
}

type CartItem struct {
	ID               uuid.UUID         `json:"id"`
	ProductID        uuid.UUID         `json:"product_id"`
	ProductName      string            `json:"product_name"`
	Quantity         int               `json:"quantity"`
	UnitPriceCents   int64             `json:"unit_price_cents"`
	UnitPrice        string            `json:"unit_price"`
	UnitEnergyCost   int64             `json:"unit_energy_cost"`
	LineTotalCents   int64             `json:"line_total_cents"`
	RarityLevel      enums.RarityLevel `json:"rarity_level"`
	WasQuestioned    bool              `json:"was_questioned"`
	QuestionResponse *string           `json:"question_response,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type TrailEntry struct {
	ID        uuid.UUID       `json:"id"`
	Kind      enums.TrailKind `json:"kind"`
	Narrative string          `json:"narrative"`
	CreatedAt time.Time       `json:"created_at"`
}
