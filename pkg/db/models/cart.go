package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// Cart is the single live cart of an owner. Version is bumped by every mutation so that
// concurrent writers on the same cart serialize.
type Cart struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:ux_carts_owner"`
	Version   int64          `gorm:"column:version;not null;default:0"`
	Items     []CartLineItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	return ensureID(&c.ID)
}

// CartLineItem stores the catalog values captured when the line was added.
type CartLineItem struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CartID           uuid.UUID         `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_line_items_product,priority:1"`
	ProductID        uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_line_items_product,priority:2"`
	ProductName      string            `gorm:"column:product_name;not null"`
	Quantity         int               `gorm:"column:quantity;not null"`
	UnitPriceCents   int64             `gorm:"column:unit_price_cents;not null"`
	UnitEnergyCost   int64             `gorm:"column:unit_energy_cost;not null"`
	RarityLevel      enums.RarityLevel `gorm:"column:rarity_level;type:text;not null"`
	WasQuestioned    bool              `gorm:"column:was_questioned;not null;default:false"`
	QuestionResponse *string           `gorm:"column:question_response"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartLineItem) TableName() string {
	return "cart_line_items"
}

func (i *CartLineItem) BeforeCreate(*gorm.DB) error {
	return ensureID(&i.ID)
}
