package checkoutdto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	"github.com/angelmondragon/dimensionalz-backend/pkg/money"
)

// Order is the client-facing view of a checkout attempt.
type Order struct {
	ID                   uuid.UUID           `json:"id"`
	TransactionCode      string              `json:"transaction_code"`
	Status               enums.OrderStatus   `json:"status"`
	Phase                enums.CheckoutPhase `json:"phase"`
	IdempotencyToken     string              `json:"idempotency_token"`
	TotalPriceCents      int64               `json:"total_price_cents"`
	TotalPrice           string              `json:"total_price"`
	TotalEnergy          int64               `json:"total_energy"`
	Currency             string              `json:"currency"`
	TransactionNarrative string              `json:"transaction_narrative,omitempty"`
	Failure              *Failure            `json:"failure,omitempty"`
	CheckoutURL          *string             `json:"checkout_url,omitempty"`
	PhaseChangedAt       time.Time           `json:"phase_changed_at"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	Items                []OrderItem         `json:"items"`
}

type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

type OrderItem struct {
	ProductID       uuid.UUID         `json:"product_id"`
	ProductName     string            `json:"product_name"`
	DimensionalCode string            `json:"dimensional_code"`
	Quantity        int               `json:"quantity"`
	UnitPriceCents  int64             `json:"unit_price_cents"`
	UnitEnergyCost  int64             `json:"unit_energy_cost"`
	RarityLevel     enums.RarityLevel `json:"rarity_level"`
}

// InitiateRequest carries the client-generated checkout token when it is not sent
// as an Idempotency-Key header.
type InitiateRequest struct {
	IdempotencyToken string `json:"idempotency_token" validate:"omitempty,max=128"`
}

func NewOrder(order *models.Order) Order {
	out := Order{
		ID:                   order.ID,
		TransactionCode:      order.TransactionCode,
		Status:               order.Status,
		Phase:                order.Phase,
		IdempotencyToken:     order.IdempotencyToken,
		TotalPriceCents:      order.TotalPriceCents,
		TotalPrice:           money.FormatCents(order.TotalPriceCents, order.Currency),
		TotalEnergy:          order.TotalEnergy,
		Currency:             order.Currency,
		TransactionNarrative: order.TransactionNarrative,
		CheckoutURL:          order.CheckoutURL,
		PhaseChangedAt:       order.PhaseChangedAt,
		CompletedAt:          order.CompletedAt,
		CreatedAt:            order.CreatedAt,
		Items:                make([]OrderItem, 0, len(order.Items)),
	}
	if order.FailureKind != nil {
		out.Failure = &Failure{Kind: *order.FailureKind}
		if order.FailureMessage != nil {
			out.Failure.Message = *order.FailureMessage
		}
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, OrderItem{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			DimensionalCode: item.DimensionalCode,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			UnitEnergyCost:  item.UnitEnergyCost,
			RarityLevel:     item.RarityLevel,
		})
	}
	return out
}
