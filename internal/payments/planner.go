// Package payments holds the partial payment planner and installment
// schedule builder for checkout sessions. The planner tracks how much of
// the current order total is collected up front; the rest becomes a debt
// settled later, optionally split into dated installments.
package payments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/pkg/errors"
)

// Planner tracks the up-front payment decision for one order. It moves
// between three states: disabled (full payment), enabled with no amount
// chosen yet, and enabled with a concrete up-front amount. The planner is
// not safe for concurrent use; the owning session serializes access.
type Planner struct {
	total      decimal.Decimal
	enabled    bool
	amountSet  bool
	amountPaid decimal.Decimal
	dueDate    *time.Time
	notes      string
}

// Snapshot is an immutable view of the planner used by settlement and the
// API layer.
type Snapshot struct {
	Enabled    bool
	AmountSet  bool
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Remaining  decimal.Decimal
	DueDate    *time.Time
	Notes      string
}

func NewPlanner() *Planner {
	return &Planner{}
}

// SetTotal informs the planner of the current order total. Any change to
// the total invalidates a previously chosen up-front amount, since it was
// decided against a figure that no longer exists.
func (p *Planner) SetTotal(total decimal.Decimal) {
	if p.total.Equal(total) {
		return
	}
	p.total = total
	p.amountSet = false
	p.amountPaid = decimal.Zero
}

// Enable switches partial payment on and discards any previously chosen
// amount. The up-front amount starts unset; nothing counts as collected
// until SetAmount records a figure, and settlement refuses to run while
// the decision is still open.
func (p *Planner) Enable() {
	p.enabled = true
	p.amountSet = false
	p.amountPaid = decimal.Zero
}

// Disable switches partial payment off and discards any chosen amount.
func (p *Planner) Disable() {
	p.enabled = false
	p.amountSet = false
	p.amountPaid = decimal.Zero
	p.dueDate = nil
	p.notes = ""
}

// SetAmount records the amount collected up front. The amount must lie in
// [0, total]; anything outside that range is rejected rather than
// silently clamped or dropped.
func (p *Planner) SetAmount(amount decimal.Decimal) error {
	if !p.enabled {
		return errors.New(errors.CodeStateConflict, "partial payment is not enabled")
	}
	if amount.IsNegative() {
		return errors.New(errors.CodeValidation, "amount paid cannot be negative")
	}
	if amount.GreaterThan(p.total) {
		return errors.New(errors.CodeValidation,
			fmt.Sprintf("amount paid %s exceeds order total %s", amount, p.total))
	}
	p.amountSet = true
	p.amountPaid = amount
	return nil
}

// SetDueDate records when the outstanding balance is expected.
func (p *Planner) SetDueDate(due *time.Time) {
	p.dueDate = due
}

// SetNotes attaches free-form context to the debt (who, why, agreement).
func (p *Planner) SetNotes(notes string) {
	p.notes = notes
}

func (p *Planner) Enabled() bool { return p.enabled }

// AmountPaid returns the effective up-front amount. With partial payment
// disabled the full total is due now. Enabled but not yet decided means
// nothing is collected yet; the whole total remains outstanding.
func (p *Planner) AmountPaid() decimal.Decimal {
	if !p.enabled {
		return p.total
	}
	if !p.amountSet {
		return decimal.Zero
	}
	return p.amountPaid
}

// Remaining is the balance left after the up-front amount.
func (p *Planner) Remaining() decimal.Decimal {
	return p.total.Sub(p.AmountPaid())
}

// IsPartial reports whether settling now leaves an outstanding balance.
func (p *Planner) IsPartial() bool {
	return p.enabled && p.amountSet && p.amountPaid.LessThan(p.total)
}

func (p *Planner) Snapshot() Snapshot {
	var due *time.Time
	if p.dueDate != nil {
		d := *p.dueDate
		due = &d
	}
	return Snapshot{
		Enabled:    p.enabled,
		AmountSet:  p.amountSet,
		Total:      p.total,
		AmountPaid: p.AmountPaid(),
		Remaining:  p.Remaining(),
		DueDate:    due,
		Notes:      p.notes,
	}
}

// Restore reloads planner state from a snapshot, used when a session is
// rehydrated. The effective amount is only kept when it was explicitly set.
func (p *Planner) Restore(snap Snapshot) {
	p.total = snap.Total
	p.enabled = snap.Enabled
	p.amountSet = snap.AmountSet
	if snap.AmountSet {
		p.amountPaid = snap.AmountPaid
	} else {
		p.amountPaid = decimal.Zero
	}
	p.dueDate = snap.DueDate
	p.notes = snap.Notes
}
