package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/types"
)

func productFixture(price string) ProductInput {
	return ProductInput{
		ID:       uuid.New(),
		Name:     "Milk 1L",
		Price:    decimal.RequireFromString(price),
		StockQty: 10,
	}
}

func weightedFixture(rate string) ProductInput {
	perUnit := decimal.RequireFromString(rate)
	return ProductInput{
		ID:           uuid.New(),
		Name:         "Bananas",
		IsWeighted:   true,
		PricePerUnit: &perUnit,
		StockQty:     50,
	}
}

func TestAddProductMergesSameProduct(t *testing.T) {
	s := NewStore(nil)
	p := productFixture("3.00")

	for i := 0; i < 2; i++ {
		outcome, err := s.AddProduct(p)
		if err != nil {
			t.Fatalf("AddProduct: %v", err)
		}
		if outcome != AddAccepted {
			t.Fatalf("outcome = %s", outcome)
		}
	}

	snap := s.Snapshot()
	if len(snap.Lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(snap.Lines))
	}
	if snap.Lines[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", snap.Lines[0].Quantity)
	}
	if !snap.Subtotal.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("subtotal = %s, want 6.00", snap.Subtotal)
	}
}

func TestAddWeightedProductNeverMerges(t *testing.T) {
	s := NewStore(nil)
	p := weightedFixture("4.00")

	if err := s.AddWeightedProduct(p, decimal.RequireFromString("1.5")); err != nil {
		t.Fatalf("AddWeightedProduct: %v", err)
	}
	if err := s.AddWeightedProduct(p, decimal.RequireFromString("0.8")); err != nil {
		t.Fatalf("AddWeightedProduct: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Lines) != 2 {
		t.Fatalf("weighted adds must stay distinct lines, got %d", len(snap.Lines))
	}
	if !snap.Lines[0].Product.CalculatedPrice.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("calculated price = %s, want 6.00", snap.Lines[0].Product.CalculatedPrice)
	}
	if !snap.Subtotal.Equal(decimal.RequireFromString("9.2")) {
		t.Fatalf("subtotal = %s, want 9.2", snap.Subtotal)
	}
}

func TestWeightedAndUnitLinesOfSameProductStayIndependent(t *testing.T) {
	s := NewStore(nil)
	p := weightedFixture("4.00")

	if err := s.AddWeightedProduct(p, decimal.NewFromInt(2)); err != nil {
		t.Fatalf("AddWeightedProduct: %v", err)
	}

	// Same catalog product also sold per unit (pre-packed).
	unit := p
	unit.IsWeighted = false
	unit.Price = decimal.RequireFromString("2.50")
	if _, err := s.AddProduct(unit); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(snap.Lines))
	}

	// Removing the unit line must not touch the weighted line.
	if err := s.Remove(snap.Lines[1].ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	snap = s.Snapshot()
	if len(snap.Lines) != 1 || !snap.Lines[0].IsWeighted() {
		t.Fatalf("wrong line removed: %+v", snap.Lines)
	}
}

func TestAddProductRequiresWeightForWeighted(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.AddProduct(weightedFixture("4.00")); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStockValidatorVetoesWithoutMutation(t *testing.T) {
	p := productFixture("3.00")
	p.StockQty = 1
	s := NewStore(func(product ProductInput, proposedQty int) bool {
		return proposedQty <= product.StockQty
	})

	outcome, err := s.AddProduct(p)
	if err != nil || outcome != AddAccepted {
		t.Fatalf("first add: %v %s", err, outcome)
	}

	outcome, err = s.AddProduct(p)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if outcome != AddRejectedInsufficientStock {
		t.Fatalf("outcome = %s, want rejection", outcome)
	}

	snap := s.Snapshot()
	if len(snap.Lines) != 1 || snap.Lines[0].Quantity != 1 {
		t.Fatalf("rejected add mutated the cart: %+v", snap.Lines)
	}
}

func TestAddServiceIdentityIncludesCustomPrice(t *testing.T) {
	s := NewStore(nil)
	price := decimal.RequireFromString("5.00")
	item := ServiceItemInput{ID: uuid.New(), Name: "Key cut", Price: &price}

	custom := decimal.RequireFromString("4.00")
	if err := s.AddService(item, &custom); err != nil {
		t.Fatalf("AddService: %v", err)
	}
	if err := s.AddService(item, &custom); err != nil {
		t.Fatalf("AddService: %v", err)
	}
	if err := s.AddService(item, nil); err != nil {
		t.Fatalf("AddService: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Lines) != 2 {
		t.Fatalf("expected 2 lines (custom vs catalog price), got %d", len(snap.Lines))
	}
	if snap.Lines[0].Quantity != 2 {
		t.Fatalf("custom-priced line should merge, qty = %d", snap.Lines[0].Quantity)
	}
	// 2 x 4.00 custom + 1 x 5.00 catalog
	if !snap.Subtotal.Equal(decimal.RequireFromString("13.00")) {
		t.Fatalf("subtotal = %s, want 13.00", snap.Subtotal)
	}
}

func TestAddServiceRequiresCustomPriceWhenUnpriced(t *testing.T) {
	s := NewStore(nil)
	item := ServiceItemInput{ID: uuid.New(), Name: "Top-up"}
	if err := s.AddService(item, nil); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	custom := decimal.RequireFromString("10.00")
	if err := s.AddService(item, &custom); err != nil {
		t.Fatalf("AddService with custom price: %v", err)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.AddProduct(productFixture("3.00")); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	lineID := s.Snapshot().Lines[0].ID

	if err := s.UpdateQuantity(lineID, 0); err != nil {
		t.Fatalf("UpdateQuantity(0): %v", err)
	}
	if !s.Snapshot().IsEmpty() {
		t.Fatal("zero quantity should remove the line")
	}
	if !s.Total().IsZero() {
		t.Fatalf("total = %s, want 0", s.Total())
	}
}

func TestUpdateWeightRecomputesCalculatedPrice(t *testing.T) {
	s := NewStore(nil)
	if err := s.AddWeightedProduct(weightedFixture("4.00"), decimal.NewFromInt(1)); err != nil {
		t.Fatalf("AddWeightedProduct: %v", err)
	}
	lineID := s.Snapshot().Lines[0].ID

	if err := s.UpdateWeight(lineID, decimal.RequireFromString("2.5")); err != nil {
		t.Fatalf("UpdateWeight: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Lines[0].Product.CalculatedPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("calculated price = %s, want 10.00", snap.Lines[0].Product.CalculatedPrice)
	}
	if !snap.Subtotal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("subtotal = %s", snap.Subtotal)
	}

	if err := s.UpdateWeight(lineID, decimal.Zero); err != nil {
		t.Fatalf("UpdateWeight(0): %v", err)
	}
	if !s.Snapshot().IsEmpty() {
		t.Fatal("zero weight should remove the line")
	}
}

func TestRemoveUnknownLine(t *testing.T) {
	s := NewStore(nil)
	if err := s.Remove(uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDiscountBounds(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.AddProduct(productFixture("10.00")); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}

	if err := s.SetDiscount(decimal.RequireFromString("-1")); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("negative discount accepted: %v", err)
	}
	if err := s.SetDiscount(decimal.RequireFromString("11.00")); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("discount above subtotal accepted: %v", err)
	}
	if err := s.SetDiscount(decimal.RequireFromString("2.50")); err != nil {
		t.Fatalf("SetDiscount: %v", err)
	}
	if !s.Total().Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("total = %s, want 7.50", s.Total())
	}
}

func TestTotalsAlwaysReconcileWithLines(t *testing.T) {
	s := NewStore(nil)
	a := productFixture("3.00")
	b := weightedFixture("4.00")

	mutations := []func() error{
		func() error { _, err := s.AddProduct(a); return err },
		func() error { _, err := s.AddProduct(a); return err },
		func() error { return s.AddWeightedProduct(b, decimal.RequireFromString("1.5")) },
		func() error {
			price := decimal.RequireFromString("2.00")
			return s.AddService(ServiceItemInput{ID: uuid.New(), Name: "Bag"}, &price)
		},
		func() error { return s.UpdateQuantity(s.Snapshot().Lines[0].ID, 5) },
		func() error { return s.SetDiscount(decimal.RequireFromString("1.00")) },
		func() error { return s.Remove(s.Snapshot().Lines[1].ID) },
	}

	for i, mutate := range mutations {
		if err := mutate(); err != nil {
			t.Fatalf("mutation %d: %v", i, err)
		}
		snap := s.Snapshot()
		independent := ComputeTotals(snap.Lines, snap.Discount)
		if !snap.Subtotal.Equal(independent.Subtotal) || !snap.Total.Equal(independent.Total) {
			t.Fatalf("mutation %d: cached totals drifted: %+v vs %+v", i, snap.Totals, independent)
		}
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.AddProduct(productFixture("3.00")); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if err := s.SetDiscount(decimal.RequireFromString("1.00")); err != nil {
		t.Fatalf("SetDiscount: %v", err)
	}

	s.Reset()

	snap := s.Snapshot()
	if !snap.IsEmpty() || !snap.Total.IsZero() || !snap.Discount.IsZero() {
		t.Fatalf("reset left state behind: %+v", snap)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore(nil)
	custom := decimal.RequireFromString("4.00")
	price := decimal.RequireFromString("5.00")
	if err := s.AddService(ServiceItemInput{ID: uuid.New(), Name: "Key cut", Price: &price}, &custom); err != nil {
		t.Fatalf("AddService: %v", err)
	}

	snap := s.Snapshot()
	*snap.Lines[0].Service.CustomPrice = decimal.RequireFromString("99.00")
	snap.Lines[0].Quantity = 42

	fresh := s.Snapshot()
	if fresh.Lines[0].Quantity != 1 || !fresh.Lines[0].Service.CustomPrice.Equal(custom) {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestRestoreRederivesTotals(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.AddProduct(productFixture("3.00")); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	snap := s.Snapshot()
	snap.Subtotal = decimal.RequireFromString("999") // tampered snapshot

	restored := NewStore(nil)
	restored.Restore(snap)
	if !restored.Total().Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("restore trusted tampered totals: %s", restored.Total())
	}
}

func TestEqualDecimalPtrSemantics(t *testing.T) {
	a := decimal.RequireFromString("4.00")
	b := decimal.RequireFromString("4")
	if !types.EqualDecimalPtr(&a, &b) {
		t.Error("4.00 and 4 should compare equal")
	}
	if !types.EqualDecimalPtr(nil, nil) {
		t.Error("nil/nil should compare equal")
	}
	if types.EqualDecimalPtr(&a, nil) {
		t.Error("value/nil should not compare equal")
	}
}
