package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

// OracleLog is a system-level event shown on the operations dashboard.
type OracleLog struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	LogType   enums.OracleLogType  `gorm:"column:log_type;type:text;not null"`
	Severity  enums.OracleSeverity `gorm:"column:severity;type:text;not null"`
	Message   string               `gorm:"column:message;not null"`
	OwnerID   *uuid.UUID           `gorm:"column:owner_id;type:uuid"`
	OrderID   *uuid.UUID           `gorm:"column:order_id;type:uuid"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime;index"`
}

func (l *OracleLog) BeforeCreate(*gorm.DB) error {
	return ensureID(&l.ID)
}
