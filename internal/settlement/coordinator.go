// Package settlement turns a finished checkout session into a durable sale.
// The coordinator validates the tender against the payment decision, writes
// the sale atomically through the committer, and schedules a follow-up
// reminder when a balance remains.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/internal/order"
	"github.com/tillview/tillview-backend/internal/payments"
	"github.com/tillview/tillview-backend/pkg/config"
	"github.com/tillview/tillview-backend/pkg/db/models"
	"github.com/tillview/tillview-backend/pkg/enums"
	"github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/logger"
	"github.com/tillview/tillview-backend/pkg/metrics"
)

// SaleCommitter persists the sale and its items in a single transaction.
type SaleCommitter interface {
	CommitSale(ctx context.Context, sale *models.Sale) error
}

// ReminderCreator records a follow-up task for an unpaid balance.
type ReminderCreator interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
}

// Decision carries the cashier's choices at the moment of settlement.
type Decision struct {
	Method         enums.PaymentMethod
	TenderedAmount *decimal.Decimal
	CustomerName   string
	Notes          string
}

// Result reports what settlement produced. ReminderCreated is false when the
// sale committed but the follow-up reminder could not be written; the sale
// stands either way.
type Result struct {
	Sale            *models.Sale
	ChangeGiven     decimal.Decimal
	Remaining       decimal.Decimal
	ReminderCreated bool
}

// Coordinator drives the settlement pipeline for one sale at a time.
type Coordinator struct {
	sales     SaleCommitter
	reminders ReminderCreator
	metrics   *metrics.SettlementMetrics
	cfg       config.SettlementConfig
	logg      *logger.Logger
	now       func() time.Time
}

func NewCoordinator(
	sales SaleCommitter,
	reminders ReminderCreator,
	settlementMetrics *metrics.SettlementMetrics,
	cfg config.SettlementConfig,
	logg *logger.Logger,
) (*Coordinator, error) {
	if sales == nil {
		return nil, fmt.Errorf("settlement coordinator requires a sale committer")
	}
	if reminders == nil {
		return nil, fmt.Errorf("settlement coordinator requires a reminder creator")
	}
	if logg == nil {
		return nil, fmt.Errorf("settlement coordinator requires a logger")
	}
	return &Coordinator{
		sales:     sales,
		reminders: reminders,
		metrics:   settlementMetrics,
		cfg:       cfg,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Settle validates the decision against the order and plan, then commits the
// sale. Nothing is persisted when validation or the commit fails, so the
// session can retry with the same state.
func (c *Coordinator) Settle(
	ctx context.Context,
	ord order.Order,
	plan payments.Snapshot,
	decision Decision,
) (*Result, error) {
	if ord.IsEmpty() {
		return nil, errors.New(errors.CodeStateConflict, "cannot settle an empty order")
	}
	if plan.Enabled && !plan.AmountSet {
		return nil, errors.New(errors.CodeStateConflict,
			"partial payment is enabled but no up-front amount has been set")
	}
	if !decision.Method.IsValid() {
		return nil, errors.New(errors.CodeValidation,
			fmt.Sprintf("unknown payment method %q", decision.Method))
	}

	amountDue := plan.AmountPaid
	remaining := plan.Remaining
	if remaining.IsPositive() && decision.CustomerName == "" {
		return nil, errors.New(errors.CodeValidation,
			"partial settlement requires a customer name")
	}

	charged, change, err := c.resolveTender(decision, amountDue)
	if err != nil {
		c.metrics.IncFailed(decision.Method.String(), "tender")
		return nil, err
	}

	sale := c.buildSale(ord, plan, decision, charged, change, remaining)

	start := c.now()
	if err := c.sales.CommitSale(ctx, sale); err != nil {
		c.metrics.IncFailed(decision.Method.String(), "commit")
		return nil, errors.Wrap(errors.CodeDependency, err, "commit sale")
	}
	c.metrics.ObserveDuration(decision.Method.String(), c.now().Sub(start))
	c.metrics.IncSettled(decision.Method.String())

	result := &Result{
		Sale:        sale,
		ChangeGiven: change,
		Remaining:   remaining,
	}
	if remaining.IsPositive() {
		c.metrics.IncPartial()
		result.ReminderCreated = c.createFollowUp(ctx, sale, decision.CustomerName, remaining, plan.DueDate)
	}
	return result, nil
}

// resolveTender returns the amount actually charged and the change to hand
// back. Cash must cover the amount due; card and credit charge it exactly.
func (c *Coordinator) resolveTender(
	decision Decision,
	amountDue decimal.Decimal,
) (charged, change decimal.Decimal, err error) {
	if !decision.Method.RequiresTender() {
		return amountDue, decimal.Zero, nil
	}
	if decision.TenderedAmount == nil {
		return decimal.Zero, decimal.Zero, errors.New(errors.CodeValidation,
			"cash settlement requires a tendered amount")
	}
	tendered := *decision.TenderedAmount
	if tendered.LessThan(amountDue) {
		return decimal.Zero, decimal.Zero, errors.New(errors.CodeInsufficientPayment,
			fmt.Sprintf("tendered %s is less than amount due %s", tendered, amountDue))
	}
	return amountDue, tendered.Sub(amountDue), nil
}

func (c *Coordinator) buildSale(
	ord order.Order,
	plan payments.Snapshot,
	decision Decision,
	charged, change, remaining decimal.Decimal,
) *models.Sale {
	sale := &models.Sale{
		OccurredAt:      c.now(),
		PaymentMethod:   decision.Method,
		SubtotalAmount:  ord.Subtotal,
		DiscountAmount:  ord.Discount,
		TotalAmount:     ord.Total,
		AmountCharged:   charged,
		ChangeGiven:     change,
		IsPartial:       remaining.IsPositive(),
		RemainingAmount: remaining,
	}
	if decision.Notes != "" {
		notes := decision.Notes
		sale.Notes = &notes
	}
	if sale.IsPartial && plan.Notes != "" {
		partialNotes := plan.Notes
		sale.PartialNotes = &partialNotes
	}
	if decision.CustomerName != "" {
		name := decision.CustomerName
		sale.CustomerName = &name
	}
	for _, line := range ord.Lines {
		sale.Items = append(sale.Items, saleItemFromLine(line))
	}
	return sale
}

func saleItemFromLine(line order.Line) models.SaleItem {
	item := models.SaleItem{
		Kind:      line.Kind(),
		Qty:       line.Quantity,
		LineTotal: order.LineContribution(line),
	}
	switch {
	case line.Product != nil:
		productID := line.Product.ProductID
		item.ProductID = &productID
		item.Name = line.Product.Name
		item.UnitPrice = line.Product.UnitPrice
		if line.IsWeighted() {
			weight := line.Product.Weight
			calculated := line.Product.CalculatedPrice
			item.UnitPrice = line.Product.PricePerUnit
			item.Weight = &weight
			item.CalculatedPrice = &calculated
		}
	case line.Service != nil:
		itemID := line.Service.ItemID
		item.SideBusinessItemID = &itemID
		item.Name = line.Service.Name
		if line.Service.CatalogPrice != nil {
			item.UnitPrice = *line.Service.CatalogPrice
		}
		if line.Service.CustomPrice != nil {
			custom := *line.Service.CustomPrice
			item.CustomPrice = &custom
		}
	}
	return item
}

// createFollowUp writes the payment reminder for a partial sale. The due
// date agreed with the customer wins; without one the reminder falls back
// to the configured offset. The sale is already committed, so a failure
// here is logged and reported, not rolled back.
func (c *Coordinator) createFollowUp(
	ctx context.Context,
	sale *models.Sale,
	customerName string,
	remaining decimal.Decimal,
	agreedDue *time.Time,
) bool {
	dueAt := c.now().Add(c.cfg.FollowUpDueOffset)
	if agreedDue != nil {
		dueAt = *agreedDue
	}
	saleID := sale.ID
	reminder := &models.Reminder{
		Title: fmt.Sprintf("Payment Due: %s", customerName),
		Body: fmt.Sprintf("Collect the remaining %s EUR for sale %s.",
			remaining.StringFixed(2), shortSaleRef(saleID)),
		DueAt:     dueAt,
		SaleID:    &saleID,
		AmountDue: remaining,
	}
	if err := c.reminders.CreateReminder(ctx, reminder); err != nil {
		c.logg.Warn(c.logg.WithSaleID(ctx, saleID.String()),
			"sale committed but payment reminder was not created: "+err.Error())
		return false
	}
	return true
}

func shortSaleRef(id uuid.UUID) string {
	s := id.String()
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}
