package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the acting identity. EnergyBalance is owned by the identity service and is
// read-only here.
type User struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email         string    `gorm:"column:email;not null;uniqueIndex:ux_users_email"`
	DisplayName   string    `gorm:"column:display_name;not null"`
	EnergyBalance int64     `gorm:"column:energy_balance;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	return ensureID(&u.ID)
}
