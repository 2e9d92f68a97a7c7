package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/pkg/enums"
)

// Sale is the finalized settlement record handed over by the engine. Amounts
// are stored unrounded; display rounding happens at the API edge.
type Sale struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OccurredAt      time.Time           `gorm:"column:occurred_at;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	SubtotalAmount  decimal.Decimal     `gorm:"column:subtotal_amount;type:numeric(12,4);not null"`
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,4);not null;default:0"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,4);not null"`
	AmountCharged   decimal.Decimal     `gorm:"column:amount_charged;type:numeric(12,4);not null"`
	ChangeGiven     decimal.Decimal     `gorm:"column:change_given;type:numeric(12,4);not null;default:0"`
	IsPartial       bool                `gorm:"column:is_partial;not null;default:false"`
	RemainingAmount decimal.Decimal     `gorm:"column:remaining_amount;type:numeric(12,4);not null;default:0"`
	PartialNotes    *string             `gorm:"column:partial_notes"`
	Notes           *string             `gorm:"column:notes"`
	CustomerID      *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	CustomerName    *string             `gorm:"column:customer_name"`
	Items           []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// SaleItem snapshots one settled cart line. Product rows carry weight and
// calculated price when the line was weight-priced; service rows carry the
// custom price when one was used.
type SaleItem struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID             uuid.UUID        `gorm:"column:sale_id;type:uuid;not null"`
	Kind               enums.LineKind   `gorm:"column:kind;type:text;not null"`
	ProductID          *uuid.UUID       `gorm:"column:product_id;type:uuid"`
	SideBusinessItemID *uuid.UUID       `gorm:"column:side_business_item_id;type:uuid"`
	Name               string           `gorm:"column:name;not null"`
	Qty                int              `gorm:"column:qty;not null"`
	UnitPrice          decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,4);not null"`
	Weight             *decimal.Decimal `gorm:"column:weight;type:numeric(12,4)"`
	CalculatedPrice    *decimal.Decimal `gorm:"column:calculated_price;type:numeric(12,4)"`
	CustomPrice        *decimal.Decimal `gorm:"column:custom_price;type:numeric(12,4)"`
	LineTotal          decimal.Decimal  `gorm:"column:line_total;type:numeric(12,4);not null"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
}
