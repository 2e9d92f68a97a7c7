package order

import "github.com/shopspring/decimal"

// Pricing is pure: a line's monetary contribution is recomputed from its
// fields on every call and no rounding happens before summation.

// LineContribution returns the amount a single line adds to the subtotal.
//
// Weight-priced products contribute weight x price-per-unit regardless of
// quantity; a missing rate contributes zero rather than failing, since the
// catalog owns rate integrity. Services contribute the custom price when one
// was set, falling back to the catalog price, then zero.
func LineContribution(line Line) decimal.Decimal {
	qty := decimal.NewFromInt(int64(line.Quantity))

	switch {
	case line.Service != nil:
		price := decimal.Zero
		if line.Service.CatalogPrice != nil {
			price = *line.Service.CatalogPrice
		}
		if line.Service.CustomPrice != nil {
			price = *line.Service.CustomPrice
		}
		return price.Mul(qty)

	case line.Product != nil && line.IsWeighted():
		return line.Product.Weight.Mul(line.Product.PricePerUnit)

	case line.Product != nil:
		return line.Product.UnitPrice.Mul(qty)

	default:
		return decimal.Zero
	}
}

// Totals carries the derived monetary state of an order. Tax is fixed at
// zero in this domain but kept in the shape so persisted sales stay honest.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives totals from scratch over the given lines. Callers
// never mutate a subtotal directly; this is the only way totals come to be.
func ComputeTotals(lines []Line, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineContribution(line))
	}
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      decimal.Zero,
		Total:    subtotal.Sub(discount),
	}
}
