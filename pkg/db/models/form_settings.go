package models

import (
	"time"
)

// FormSettings holds the per-form sheet destination written by the admin
// surface. The submission path only ever reads it.
type FormSettings struct {
	ID            uint      `gorm:"primaryKey"`
	FormID        string    `gorm:"column:form_id;uniqueIndex;not null"`
	Enabled       bool      `gorm:"column:enabled;not null;default:false"`
	SpreadsheetID string    `gorm:"column:spreadsheet_id;not null;default:''"`
	SheetName     string    `gorm:"column:sheet_name;not null;default:'Sheet1'"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (FormSettings) TableName() string {
	return "form_settings"
}
