package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// Order is permanent history of a checkout attempt. Phase drives the state machine and
// Status is its coarse projection.
type Order struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID              uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index:ix_orders_owner_created,priority:1"`
	CartID               uuid.UUID           `gorm:"column:cart_id;type:uuid;not null"`
	TransactionCode      string              `gorm:"column:transaction_code;not null;uniqueIndex:ux_orders_transaction_code"`
	Status               enums.OrderStatus   `gorm:"column:status;type:text;not null"`
	Phase                enums.CheckoutPhase `gorm:"column:phase;type:text;not null;index:ix_orders_phase_changed,priority:1"`
	IdempotencyToken     string              `gorm:"column:idempotency_token;not null;uniqueIndex:ux_orders_idempotency_token"`
	TotalPriceCents      int64               `gorm:"column:total_price_cents;not null;default:0"`
	TotalEnergy          int64               `gorm:"column:total_energy;not null;default:0"`
	Currency             string              `gorm:"column:currency;not null"`
	TransactionNarrative string              `gorm:"column:transaction_narrative;not null;default:''"`
	FailureKind          *string             `gorm:"column:failure_kind"`
	FailureMessage       *string             `gorm:"column:failure_message"`
	PaymentSessionID     *string             `gorm:"column:payment_session_id"`
	CheckoutURL          *string             `gorm:"column:checkout_url"`
	PhaseChangedAt       time.Time           `gorm:"column:phase_changed_at;not null;index:ix_orders_phase_changed,priority:2"`
	CompletedAt          *time.Time          `gorm:"column:completed_at"`
	Items                []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime;index:ix_orders_owner_created,priority:2"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	return ensureID(&o.ID)
}

// OrderItem is the frozen snapshot of one cart line taken at portal_opening.
type OrderItem struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string            `gorm:"column:product_name;not null"`
	DimensionalCode string            `gorm:"column:dimensional_code;not null"`
	Quantity        int               `gorm:"column:quantity;not null"`
	UnitPriceCents  int64             `gorm:"column:unit_price_cents;not null"`
	UnitEnergyCost  int64             `gorm:"column:unit_energy_cost;not null"`
	RarityLevel     enums.RarityLevel `gorm:"column:rarity_level;type:text;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	return ensureID(&i.ID)
}
