package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/pkg/enums"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/types"
)

// ProductInput is the fully-resolved catalog product handed to the store.
// The store never reaches into the catalog itself.
type ProductInput struct {
	ID           uuid.UUID
	Name         string
	Price        decimal.Decimal
	IsWeighted   bool
	WeightUnit   enums.WeightUnit
	PricePerUnit *decimal.Decimal
	StockQty     int
}

// ServiceItemInput is the resolved side-business item handed to the store.
type ServiceItemInput struct {
	ID    uuid.UUID
	Name  string
	Price *decimal.Decimal
}

// AddOutcome is the explicit result of an add attempt. Stock rejection is a
// signal, not an error: the cart is untouched but the caller can tell the
// cashier why nothing happened.
type AddOutcome string

const (
	AddAccepted                  AddOutcome = "accepted"
	AddRejectedInsufficientStock AddOutcome = "rejected_insufficient_stock"
)

// StockValidator decides whether the proposed line quantity is coverable by
// stock. A nil validator accepts everything.
type StockValidator func(product ProductInput, proposedQty int) bool

// Order is an immutable snapshot of the store: cloned lines plus totals
// derived at snapshot time.
type Order struct {
	Lines []Line
	Totals
}

// IsEmpty reports whether the snapshot holds no lines.
func (o Order) IsEmpty() bool {
	return len(o.Lines) == 0
}

// Store owns the mutable line list for one checkout session and rederives
// totals after every mutation. It is not safe for concurrent use; the owning
// session serializes access.
type Store struct {
	lines      []Line
	discount   decimal.Decimal
	totals     Totals
	stockCheck StockValidator
}

// NewStore builds an empty store. stockCheck may be nil.
func NewStore(stockCheck StockValidator) *Store {
	s := &Store{stockCheck: stockCheck}
	s.recompute()
	return s
}

// AddProduct adds a unit-priced product. A line holding the same product
// merges by incrementing quantity; otherwise a new line is appended. The
// stock validator sees the post-merge quantity and can veto the add without
// touching the cart.
func (s *Store) AddProduct(product ProductInput) (AddOutcome, error) {
	if product.ID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if product.IsWeighted {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "weight-priced products require a weight at add time")
	}

	existing := -1
	for i, line := range s.lines {
		if line.mergesWithProduct(product.ID) {
			existing = i
			break
		}
	}

	proposedQty := 1
	if existing >= 0 {
		proposedQty = s.lines[existing].Quantity + 1
	}
	if s.stockCheck != nil && !s.stockCheck(product, proposedQty) {
		return AddRejectedInsufficientStock, nil
	}

	if existing >= 0 {
		s.lines[existing].Quantity = proposedQty
	} else {
		s.lines = append(s.lines, Line{
			ID:       uuid.New(),
			Quantity: 1,
			Product: &ProductRef{
				ProductID:  product.ID,
				Name:       product.Name,
				UnitPrice:  product.Price,
				WeightUnit: product.WeightUnit,
			},
		})
	}
	s.recompute()
	return AddAccepted, nil
}

// AddWeightedProduct appends a weight-priced line. Weighted lines never
// merge: every weighing event is its own line with its own measured weight.
func (s *Store) AddWeightedProduct(product ProductInput, weight decimal.Decimal) error {
	if product.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !product.IsWeighted {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is not weight-priced")
	}
	if !weight.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}

	rate := decimal.Zero
	if product.PricePerUnit != nil {
		rate = *product.PricePerUnit
	}

	s.lines = append(s.lines, Line{
		ID:       uuid.New(),
		Quantity: 1,
		Product: &ProductRef{
			ProductID:       product.ID,
			Name:            product.Name,
			UnitPrice:       product.Price,
			IsWeighted:      true,
			WeightUnit:      product.WeightUnit,
			PricePerUnit:    rate,
			Weight:          weight,
			CalculatedPrice: weight.Mul(rate),
		},
	})
	s.recompute()
	return nil
}

// AddService adds a side-business line. customPrice is mandatory when the
// item has no catalog price. Identity for merging is item id plus custom
// price, so the same item at two negotiated prices stays on two lines.
func (s *Store) AddService(item ServiceItemInput, customPrice *decimal.Decimal) error {
	if item.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "service item id is required")
	}
	if item.Price == nil && customPrice == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "custom price is required for unpriced service items")
	}
	if customPrice != nil && customPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "custom price cannot be negative")
	}

	for i, line := range s.lines {
		if line.mergesWithService(item.ID, customPrice) {
			s.lines[i].Quantity++
			s.recompute()
			return nil
		}
	}

	ref := &ServiceRef{
		ItemID: item.ID,
		Name:   item.Name,
	}
	if item.Price != nil {
		ref.CatalogPrice = types.DecimalPtr(*item.Price)
	}
	if customPrice != nil {
		ref.CustomPrice = types.DecimalPtr(*customPrice)
	}

	s.lines = append(s.lines, Line{
		ID:       uuid.New(),
		Quantity: 1,
		Service:  ref,
	})
	s.recompute()
	return nil
}

// UpdateQuantity sets the quantity of the addressed line directly; merge
// logic never re-triggers on update. A quantity at or below zero removes the
// line.
func (s *Store) UpdateQuantity(lineID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.Remove(lineID)
	}
	idx := s.indexOf(lineID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}
	if s.lines[idx].IsWeighted() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "weight-priced lines have no quantity; update the weight")
	}
	s.lines[idx].Quantity = quantity
	s.recompute()
	return nil
}

// UpdateWeight re-weighs the addressed line and rederives its calculated
// price. A weight at or below zero removes the line.
func (s *Store) UpdateWeight(lineID uuid.UUID, weight decimal.Decimal) error {
	if !weight.IsPositive() {
		return s.Remove(lineID)
	}
	idx := s.indexOf(lineID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}
	line := s.lines[idx]
	if !line.IsWeighted() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "line is not weight-priced")
	}
	line.Product.Weight = weight
	line.Product.CalculatedPrice = weight.Mul(line.Product.PricePerUnit)
	s.recompute()
	return nil
}

// Remove deletes exactly the addressed line. Addressing by synthetic line id
// keeps a weighted and a non-weighted line of the same product independent.
func (s *Store) Remove(lineID uuid.UUID) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.recompute()
	return nil
}

// SetDiscount applies a flat discount across the order.
func (s *Store) SetDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}
	if discount.GreaterThan(s.totals.Subtotal) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds subtotal")
	}
	s.discount = discount
	s.recompute()
	return nil
}

// Reset clears all lines and derived totals.
func (s *Store) Reset() {
	s.lines = nil
	s.discount = decimal.Zero
	s.recompute()
}

// Snapshot returns a deep copy of the current order.
func (s *Store) Snapshot() Order {
	lines := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		lines = append(lines, line.clone())
	}
	return Order{Lines: lines, Totals: s.totals}
}

// Restore replaces the store's contents with a previously taken snapshot.
// Used to reload a held transaction; totals are rederived, not trusted.
func (s *Store) Restore(snapshot Order) {
	lines := make([]Line, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		lines = append(lines, line.clone())
	}
	s.lines = lines
	s.discount = snapshot.Discount
	s.recompute()
}

// Total returns the current derived total.
func (s *Store) Total() decimal.Decimal {
	return s.totals.Total
}

func (s *Store) indexOf(lineID uuid.UUID) int {
	for i, line := range s.lines {
		if line.ID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) recompute() {
	s.totals = ComputeTotals(s.lines, s.discount)
}
