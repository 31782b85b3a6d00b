package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// Product is a catalog entry. CurrentStock is authoritative at read time.
type Product struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name            string            `gorm:"column:name;not null"`
	DimensionalCode string            `gorm:"column:dimensional_code;not null;uniqueIndex:ux_products_dimensional_code"`
	Description     string            `gorm:"column:description"`
	PriceCents      int64             `gorm:"column:price_cents;not null"`
	EnergyCost      int64             `gorm:"column:energy_cost;not null;default:0"`
	BaseStock       int               `gorm:"column:base_stock;not null;default:0"`
	CurrentStock    int               `gorm:"column:current_stock;not null;default:0"`
	RarityLevel     enums.RarityLevel `gorm:"column:rarity_level;type:text;not null;default:'common'"`
	StockMood       enums.StockMood   `gorm:"column:stock_mood;type:text;not null;default:'stable'"`
	IsActive        bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	return ensureID(&p.ID)
}
