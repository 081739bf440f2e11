package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores one persisted key/value entry of the settings container.
type Setting struct {
	Key       string         `gorm:"type:varchar(255);primaryKey"`                      // Namespaced settings key.
	Value     datatypes.JSON `gorm:"type:jsonb"`                                        // JSON-encoded value.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime;default:CURRENT_TIMESTAMP"` // Last update timestamp.
}

// TableName pins the table name regardless of naming strategy.
func (Setting) TableName() string {
	return "settings"
}
