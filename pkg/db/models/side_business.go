package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SideBusiness groups ad-hoc service offerings sold alongside the catalog
// (key cutting, phone top-ups and the like).
type SideBusiness struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	BusinessType string             `gorm:"column:business_type;not null"`
	Items        []SideBusinessItem `gorm:"foreignKey:SideBusinessID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// SideBusinessItem is one sellable service. Price may be null, in which case
// the cashier must supply a custom price at add time.
type SideBusinessItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SideBusinessID uuid.UUID        `gorm:"column:side_business_id;type:uuid;not null"`
	SideBusiness   *SideBusiness    `gorm:"foreignKey:SideBusinessID"`
	Name           string           `gorm:"column:name;not null"`
	Price          *decimal.Decimal `gorm:"column:price;type:numeric(12,4)"`
	StockQty       *int             `gorm:"column:stock_qty"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
