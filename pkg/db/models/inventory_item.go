package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a stock record for one item within one project and test
// area. The same item name can appear under several projects as separate rows.
type InventoryItem struct {
	ID              int64            `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id"`
	ItemName        string           `gorm:"column:item_name;not null" json:"item_name"`
	Description     *string          `gorm:"column:item_description" json:"item_description,omitempty"`
	PartNumber      *string          `gorm:"column:item_part_number" json:"item_part_number,omitempty"`
	CurrentQuantity int              `gorm:"column:item_current_quantity;not null;default:0" json:"item_current_quantity"`
	MinCount        int              `gorm:"column:item_min_count;not null;default:0" json:"item_min_count"`
	Unit            *string          `gorm:"column:item_unit" json:"item_unit,omitempty"`
	UnitPrice       *decimal.Decimal `gorm:"column:item_unit_price;type:numeric(12,2)" json:"item_unit_price,omitempty"`
	Manufacturer    *string          `gorm:"column:item_manufacturer" json:"item_manufacturer,omitempty"`
	ItemType        *string          `gorm:"column:item_type" json:"item_type,omitempty"`
	TestArea        string           `gorm:"column:test_area" json:"test_area"`
	ProjectName     string           `gorm:"column:project_name" json:"project_name"`
	LifeCycle       int              `gorm:"column:item_life_cycle;not null;default:0" json:"item_life_cycle"`
	ImageURL        *string          `gorm:"column:item_image_url" json:"item_image_url,omitempty"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (InventoryItem) TableName() string {
	return "inventory"
}
