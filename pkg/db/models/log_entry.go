package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/pkg/enums"
)

// LogEntry records one inventory or transaction action. Rows are append-only
// and removed only by the cascade delete of their inventory item.
type LogEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InventoryID uuid.UUID       `gorm:"column:inventory_id;type:uuid;not null;index" json:"inventory_id"`
	Timestamp   time.Time       `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`
	AccountName string          `gorm:"column:account_name;not null" json:"account_name"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	Action      enums.LogAction `gorm:"column:action;type:log_action_enum;not null" json:"action"`
	Quantity    int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	PriceEach   decimal.Decimal `gorm:"column:price_each;type:numeric(14,2);not null;default:0" json:"price_each"`
	OldStock    int             `gorm:"column:old_stock;not null;default:0" json:"old_stock"`
	NewStock    int             `gorm:"column:new_stock;not null;default:0" json:"new_stock"`
	SalesAmount decimal.Decimal `gorm:"column:sales_amount;type:numeric(14,2);not null;default:0" json:"sales_amount"`
	TransactBy  string          `gorm:"column:transact_by" json:"transact_by"`
}

func (LogEntry) TableName() string { return "log_entries" }

func (l *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
