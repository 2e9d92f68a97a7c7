package payments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/pkg/enums"
	"github.com/tillview/tillview-backend/pkg/errors"
)

// Installment is one dated slice of an outstanding balance.
type Installment struct {
	Sequence int                     `json:"sequence"`
	Amount   decimal.Decimal         `json:"amount"`
	DueAt    time.Time               `json:"due_at"`
	Status   enums.InstallmentStatus `json:"status"`
}

// InstallmentPlan describes how the remaining balance of a partially paid
// order will be collected over time.
type InstallmentPlan struct {
	Total        decimal.Decimal  `json:"total"`
	AmountPaid   decimal.Decimal  `json:"amount_paid"`
	Remaining    decimal.Decimal  `json:"remaining"`
	Status       enums.PlanStatus `json:"status"`
	Installments []Installment    `json:"installments"`
}

// BuildInstallmentPlan splits the planner's remaining balance into count
// equal installments spaced spacingDays apart starting at start. Amounts
// are truncated to cents and the last installment absorbs the rounding
// remainder, so the installments always sum to the exact balance.
func BuildInstallmentPlan(snap Snapshot, count int, start time.Time, spacingDays int) (*InstallmentPlan, error) {
	if count < 1 {
		return nil, errors.New(errors.CodeValidation, "installment count must be at least 1")
	}
	if spacingDays < 1 {
		return nil, errors.New(errors.CodeValidation, "installment spacing must be at least one day")
	}
	remaining := snap.Remaining
	if remaining.IsNegative() {
		return nil, errors.New(errors.CodeInternal,
			fmt.Sprintf("negative remaining balance %s", remaining))
	}

	plan := &InstallmentPlan{
		Total:      snap.Total,
		AmountPaid: snap.AmountPaid,
		Remaining:  remaining,
		Status:     planStatus(snap),
	}
	if remaining.IsZero() {
		return plan, nil
	}

	per := remaining.Div(decimal.NewFromInt(int64(count))).Truncate(2)
	allocated := decimal.Zero
	for i := 0; i < count; i++ {
		amount := per
		if i == count-1 {
			amount = remaining.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		plan.Installments = append(plan.Installments, Installment{
			Sequence: i + 1,
			Amount:   amount,
			DueAt:    start.AddDate(0, 0, i*spacingDays),
			Status:   enums.InstallmentStatusPending,
		})
	}
	return plan, nil
}

// planStatus classifies the debt: any outstanding balance is partial, even
// when nothing has been collected yet.
func planStatus(snap Snapshot) enums.PlanStatus {
	if snap.Remaining.IsZero() {
		return enums.PlanStatusCompleted
	}
	return enums.PlanStatusPartial
}
