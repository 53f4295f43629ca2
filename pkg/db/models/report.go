package models

import "time"

// Report is one persisted row of the weekly usage report.
type Report struct {
	ID              int64     `gorm:"column:report_id;primaryKey;autoIncrement" json:"report_id"`
	WeekStartDate   time.Time `gorm:"column:week_start_date;type:date" json:"week_start_date"`
	WeekEndDate     time.Time `gorm:"column:week_end_date;type:date" json:"week_end_date"`
	ItemID          int64     `gorm:"column:item_id" json:"item_id"`
	ItemName        string    `gorm:"column:item_name" json:"item_name"`
	ItemDescription *string   `gorm:"column:item_description" json:"item_description,omitempty"`
	QuantityUsed    int       `gorm:"column:quantity_used" json:"quantity_used"`
	CurrentQuantity int       `gorm:"column:current_quantity" json:"current_quantity"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
