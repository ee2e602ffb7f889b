package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is one (account, product) stock row. Stocks and SoldStocks
// are cumulative; availability is always derived, never stored.
type InventoryItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AccountName string          `gorm:"column:account_name;not null" json:"account_name"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	AccountKey  string          `gorm:"column:account_key;not null;index:idx_inventory_keys,unique" json:"-"`
	ProductKey  string          `gorm:"column:product_key;not null;index:idx_inventory_keys,unique" json:"-"`
	Stocks      int             `gorm:"column:stocks;not null;default:0" json:"stocks"`
	SoldStocks  int             `gorm:"column:sold_stocks;not null;default:0" json:"sold_stocks"`
	PriceEach   decimal.Decimal `gorm:"column:price_each;type:numeric(14,2);not null;default:0" json:"price_each"`
	InsertedBy  string          `gorm:"column:inserted_by" json:"inserted_by"`
	LastUpdated time.Time       `gorm:"column:last_updated;autoUpdateTime" json:"last_updated"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
