package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/pkg/enums"
)

// Product is a catalog entry sold either per unit or by measured weight.
type Product struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string            `gorm:"column:name;not null"`
	Category     string            `gorm:"column:category;not null"`
	Price        decimal.Decimal   `gorm:"column:price;type:numeric(12,4);not null"`
	StockQty     int               `gorm:"column:stock_qty;not null;default:0"`
	IsWeighted   bool              `gorm:"column:is_weighted;not null;default:false"`
	WeightUnit   *enums.WeightUnit `gorm:"column:weight_unit;type:text"`
	PricePerUnit *decimal.Decimal  `gorm:"column:price_per_unit;type:numeric(12,4)"`
	SKU          *string           `gorm:"column:sku"`
	Barcode      *string           `gorm:"column:barcode"`
	Description  *string           `gorm:"column:description"`
	ImageURL     *string           `gorm:"column:image_url"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
