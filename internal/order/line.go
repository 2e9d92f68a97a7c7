package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/pkg/enums"
	"github.com/tillview/tillview-backend/pkg/types"
)

// ProductRef is the product payload of a cart line. For weight-priced lines
// Weight carries the measured amount and CalculatedPrice is derived from it;
// both stay zero on unit-priced lines.
type ProductRef struct {
	ProductID       uuid.UUID
	Name            string
	UnitPrice       decimal.Decimal
	IsWeighted      bool
	WeightUnit      enums.WeightUnit
	PricePerUnit    decimal.Decimal
	Weight          decimal.Decimal
	CalculatedPrice decimal.Decimal
}

// ServiceRef is the side-business payload of a cart line. CustomPrice is
// required when the catalog carries no price for the item.
type ServiceRef struct {
	ItemID       uuid.UUID
	Name         string
	CatalogPrice *decimal.Decimal
	CustomPrice  *decimal.Decimal
}

// Line is one cart entry. Exactly one of Product/Service is set; the Kind
// method reports which. ID is synthetic and is the only addressing key for
// update and remove operations.
type Line struct {
	ID       uuid.UUID
	Quantity int
	Product  *ProductRef
	Service  *ServiceRef
}

// Kind reports which payload the line carries.
func (l Line) Kind() enums.LineKind {
	if l.Service != nil {
		return enums.LineKindService
	}
	return enums.LineKindProduct
}

// IsWeighted reports whether the line is priced by measured weight.
func (l Line) IsWeighted() bool {
	return l.Product != nil && l.Product.Weight.IsPositive()
}

// merges reports whether an incoming non-weighted product add should fold
// into this line instead of appending a new one. Weighted lines never merge;
// each weighing event stays its own line.
func (l Line) mergesWithProduct(productID uuid.UUID) bool {
	return l.Product != nil && !l.IsWeighted() && l.Product.ProductID == productID
}

// mergesWithService matches on item identity plus custom price, treating two
// absent custom prices as equal. The same item at two different custom prices
// stays on two lines.
func (l Line) mergesWithService(itemID uuid.UUID, customPrice *decimal.Decimal) bool {
	return l.Service != nil &&
		l.Service.ItemID == itemID &&
		types.EqualDecimalPtr(l.Service.CustomPrice, customPrice)
}

func (l Line) clone() Line {
	out := l
	if l.Product != nil {
		product := *l.Product
		out.Product = &product
	}
	if l.Service != nil {
		service := *l.Service
		if l.Service.CatalogPrice != nil {
			service.CatalogPrice = types.DecimalPtr(*l.Service.CatalogPrice)
		}
		if l.Service.CustomPrice != nil {
			service.CustomPrice = types.DecimalPtr(*l.Service.CustomPrice)
		}
		out.Service = &service
	}
	return out
}
