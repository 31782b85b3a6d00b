package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// TrailEntry is append-only: rows are inserted and never updated or deleted.
type TrailEntry struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index:ix_trail_entries_cart_created,priority:1"`
	Kind      enums.TrailKind `gorm:"column:kind;type:text;not null"`
	Narrative string          `gorm:"column:narrative;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null;index:ix_trail_entries_cart_created,priority:2"`
}

func (e *TrailEntry) BeforeCreate(*gorm.DB) error {
	return ensureID(&e.ID)
}
