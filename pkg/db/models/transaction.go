package models

import (
	"time"

	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
)

// Transaction is one immutable ledger entry. Rows are only ever appended;
// stock levels change on the inventory row inside the same database
// transaction that records the entry.
type Transaction struct {
	ID              int64                 `gorm:"column:transaction_id;primaryKey;autoIncrement" json:"transaction_id"`
	ItemID          *int64                `gorm:"column:item_id" json:"item_id,omitempty"`
	EmployeeID      int64                 `gorm:"column:employee_id;not null" json:"employee_id"`
	FixtureID       int64                 `gorm:"column:fixture_id;not null" json:"fixture_id"`
	QuantityUsed    int                   `gorm:"column:quantity_used;not null" json:"quantity_used"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;not null" json:"transaction_type"`
	Remarks         *string               `gorm:"column:remarks" json:"remarks,omitempty"`
	TestArea        *string               `gorm:"column:test_area" json:"test_area,omitempty"`
	ProjectName     *string               `gorm:"column:project_name" json:"project_name,omitempty"`

	// LinkedRequestTxID ties a return entry to the request it settles.
	// Legacy rows carry the link inside Remarks instead; readers fall back
	// to parsing it from there.
	LinkedRequestTxID *int64 `gorm:"column:linked_request_transaction_id" json:"linked_request_transaction_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
