package models

import (
	"time"
)

// Mapping scopes. Order mappings apply to every completed order; form
// scopes are reserved for per-form overrides.
const (
	MappingScopeOrder = "order"
)

// FieldMapping maps one source field (order_id, order_total,
// billing_phone, ...) to a destination column in the sheet. Rows with an
// empty destination are never persisted.
type FieldMapping struct {
	ID          uint      `gorm:"primaryKey"`
	Scope       string    `gorm:"column:scope;index;not null"`
	SourceField string    `gorm:"column:source_field;not null"`
	Destination string    `gorm:"column:destination;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (FieldMapping) TableName() string {
	return "field_mappings"
}
