package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestLineContribution(t *testing.T) {
	rate := decimal.RequireFromString("4.00")
	catalog := decimal.RequireFromString("5.00")
	custom := decimal.RequireFromString("4.50")

	tests := []struct {
		name string
		line Line
		want string
	}{
		{
			name: "unit product",
			line: Line{
				Quantity: 3,
				Product:  &ProductRef{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("2.50")},
			},
			want: "7.5",
		},
		{
			name: "weighted product uses weight times rate",
			line: Line{
				Quantity: 1,
				Product: &ProductRef{
					ProductID:       uuid.New(),
					IsWeighted:      true,
					PricePerUnit:    rate,
					Weight:          decimal.RequireFromString("1.5"),
					CalculatedPrice: decimal.RequireFromString("6.00"),
				},
			},
			want: "6",
		},
		{
			name: "service catalog price",
			line: Line{
				Quantity: 2,
				Service:  &ServiceRef{ItemID: uuid.New(), CatalogPrice: &catalog},
			},
			want: "10",
		},
		{
			name: "service custom price wins",
			line: Line{
				Quantity: 2,
				Service:  &ServiceRef{ItemID: uuid.New(), CatalogPrice: &catalog, CustomPrice: &custom},
			},
			want: "9",
		},
		{
			name: "unpriced service contributes zero",
			line: Line{
				Quantity: 1,
				Service:  &ServiceRef{ItemID: uuid.New()},
			},
			want: "0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := LineContribution(tc.line)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("contribution = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestComputeTotals(t *testing.T) {
	rate := decimal.RequireFromString("4.00")
	lines := []Line{
		{Quantity: 2, Product: &ProductRef{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("3.00")}},
		{Quantity: 1, Product: &ProductRef{
			ProductID:       uuid.New(),
			IsWeighted:      true,
			PricePerUnit:    rate,
			Weight:          decimal.RequireFromString("1.5"),
			CalculatedPrice: decimal.RequireFromString("6.00"),
		}},
	}

	totals := ComputeTotals(lines, decimal.RequireFromString("2.00"))
	if !totals.Subtotal.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("subtotal = %s, want 12.00", totals.Subtotal)
	}
	if !totals.Tax.IsZero() {
		t.Fatalf("tax = %s, want 0", totals.Tax)
	}
	if !totals.Total.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("total = %s, want 10.00", totals.Total)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, decimal.Zero)
	if !totals.Subtotal.IsZero() || !totals.Total.IsZero() {
		t.Fatalf("empty totals not zero: %+v", totals)
	}
}
