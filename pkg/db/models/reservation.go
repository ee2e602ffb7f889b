package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/pkg/enums"
)

// Reservation holds units against an inventory item until it is confirmed
// (sold) or cancelled. Only pending rows count against availability.
type Reservation struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InventoryID  uuid.UUID               `gorm:"column:inventory_id;type:uuid;not null;index" json:"inventory_id"`
	ClientName   string                  `gorm:"column:client_name;not null" json:"client_name"`
	Quantity     int                     `gorm:"column:quantity;not null" json:"quantity"`
	Status       enums.ReservationStatus `gorm:"column:status;type:reservation_status_enum;not null;default:pending" json:"status"`
	PriceEach    decimal.Decimal         `gorm:"column:price_each;type:numeric(14,2);not null;default:0" json:"price_each"`
	DateReserved time.Time               `gorm:"column:date_reserved;autoCreateTime" json:"date_reserved"`
	DatePickup   *time.Time              `gorm:"column:date_pickup" json:"date_pickup,omitempty"`
}

func (Reservation) TableName() string { return "reservations" }

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
