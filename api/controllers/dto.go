package controllers

import (
	"time"

	"github.com/tillview/tillview-backend/internal/checkout"
	"github.com/tillview/tillview-backend/internal/order"
	"github.com/tillview/tillview-backend/internal/payments"
	"github.com/tillview/tillview-backend/pkg/db/models"
	"github.com/tillview/tillview-backend/pkg/types"
)

// Amounts cross the API boundary as fixed two-decimal strings; the engine
// itself never rounds.

type lineDTO struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       *string `json:"unit_price,omitempty"`
	Weight          *string `json:"weight,omitempty"`
	WeightUnit      *string `json:"weight_unit,omitempty"`
	PricePerUnit    *string `json:"price_per_unit,omitempty"`
	CalculatedPrice *string `json:"calculated_price,omitempty"`
	CustomPrice     *string `json:"custom_price,omitempty"`
	LineTotal       string  `json:"line_total"`
}

type totalsDTO struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type partialPaymentDTO struct {
	Enabled    bool       `json:"enabled"`
	AmountSet  bool       `json:"amount_set"`
	Total      string     `json:"total"`
	AmountPaid string     `json:"amount_paid"`
	Remaining  string     `json:"remaining"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

type sessionDTO struct {
	SessionID      string            `json:"session_id"`
	Lines          []lineDTO         `json:"lines"`
	Totals         totalsDTO         `json:"totals"`
	PartialPayment partialPaymentDTO `json:"partial_payment"`
}

func sessionFromView(view checkout.View) sessionDTO {
	dto := sessionDTO{
		SessionID:      view.SessionID.String(),
		Lines:          make([]lineDTO, 0, len(view.Order.Lines)),
		Totals:         totalsFromOrder(view.Order),
		PartialPayment: partialPaymentFromSnapshot(view.Plan),
	}
	for _, line := range view.Order.Lines {
		dto.Lines = append(dto.Lines, lineFromOrder(line))
	}
	return dto
}

func lineFromOrder(line order.Line) lineDTO {
	dto := lineDTO{
		ID:        line.ID.String(),
		Kind:      line.Kind().String(),
		Quantity:  line.Quantity,
		LineTotal: types.DisplayAmount(order.LineContribution(line)),
	}
	switch {
	case line.Product != nil:
		dto.Name = line.Product.Name
		unitPrice := types.DisplayAmount(line.Product.UnitPrice)
		dto.UnitPrice = &unitPrice
		if line.IsWeighted() {
			weight := line.Product.Weight.String()
			unit := line.Product.WeightUnit.String()
			rate := types.DisplayAmount(line.Product.PricePerUnit)
			calculated := types.DisplayAmount(line.Product.CalculatedPrice)
			dto.Weight = &weight
			dto.WeightUnit = &unit
			dto.PricePerUnit = &rate
			dto.CalculatedPrice = &calculated
			dto.UnitPrice = nil
		}
	case line.Service != nil:
		dto.Name = line.Service.Name
		if line.Service.CatalogPrice != nil {
			price := types.DisplayAmount(*line.Service.CatalogPrice)
			dto.UnitPrice = &price
		}
		if line.Service.CustomPrice != nil {
			custom := types.DisplayAmount(*line.Service.CustomPrice)
			dto.CustomPrice = &custom
		}
	}
	return dto
}

func totalsFromOrder(ord order.Order) totalsDTO {
	return totalsDTO{
		Subtotal: types.DisplayAmount(ord.Subtotal),
		Discount: types.DisplayAmount(ord.Discount),
		Tax:      types.DisplayAmount(ord.Tax),
		Total:    types.DisplayAmount(ord.Total),
	}
}

func partialPaymentFromSnapshot(snap payments.Snapshot) partialPaymentDTO {
	return partialPaymentDTO{
		Enabled:    snap.Enabled,
		AmountSet:  snap.AmountSet,
		Total:      types.DisplayAmount(snap.Total),
		AmountPaid: types.DisplayAmount(snap.AmountPaid),
		Remaining:  types.DisplayAmount(snap.Remaining),
		DueDate:    snap.DueDate,
		Notes:      snap.Notes,
	}
}

type installmentDTO struct {
	Sequence int       `json:"sequence"`
	Amount   string    `json:"amount"`
	DueAt    time.Time `json:"due_at"`
	Status   string    `json:"status"`
}

type installmentPlanDTO struct {
	Total        string           `json:"total"`
	AmountPaid   string           `json:"amount_paid"`
	Remaining    string           `json:"remaining"`
	Status       string           `json:"status"`
	Installments []installmentDTO `json:"installments"`
}

func installmentPlanFromModel(plan *payments.InstallmentPlan) installmentPlanDTO {
	dto := installmentPlanDTO{
		Total:        types.DisplayAmount(plan.Total),
		AmountPaid:   types.DisplayAmount(plan.AmountPaid),
		Remaining:    types.DisplayAmount(plan.Remaining),
		Status:       plan.Status.String(),
		Installments: make([]installmentDTO, 0, len(plan.Installments)),
	}
	for _, inst := range plan.Installments {
		dto.Installments = append(dto.Installments, installmentDTO{
			Sequence: inst.Sequence,
			Amount:   types.DisplayAmount(inst.Amount),
			DueAt:    inst.DueAt,
			Status:   inst.Status.String(),
		})
	}
	return dto
}

type productDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        string  `json:"price"`
	StockQty     int     `json:"stock_qty"`
	IsWeighted   bool    `json:"is_weighted"`
	WeightUnit   *string `json:"weight_unit,omitempty"`
	PricePerUnit *string `json:"price_per_unit,omitempty"`
	SKU          *string `json:"sku,omitempty"`
	Barcode      *string `json:"barcode,omitempty"`
}

func productFromModel(product models.Product) productDTO {
	dto := productDTO{
		ID:         product.ID.String(),
		Name:       product.Name,
		Category:   product.Category,
		Price:      types.DisplayAmount(product.Price),
		StockQty:   product.StockQty,
		IsWeighted: product.IsWeighted,
		SKU:        product.SKU,
		Barcode:    product.Barcode,
	}
	if product.WeightUnit != nil {
		unit := product.WeightUnit.String()
		dto.WeightUnit = &unit
	}
	if product.PricePerUnit != nil {
		rate := types.DisplayAmount(*product.PricePerUnit)
		dto.PricePerUnit = &rate
	}
	return dto
}

type sideBusinessItemDTO struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price *string `json:"price,omitempty"`
}

type sideBusinessDTO struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	BusinessType string                `json:"business_type"`
	Items        []sideBusinessItemDTO `json:"items"`
}

func sideBusinessFromModel(business models.SideBusiness) sideBusinessDTO {
	dto := sideBusinessDTO{
		ID:           business.ID.String(),
		Name:         business.Name,
		BusinessType: business.BusinessType,
		Items:        make([]sideBusinessItemDTO, 0, len(business.Items)),
	}
	for _, item := range business.Items {
		itemDTO := sideBusinessItemDTO{ID: item.ID.String(), Name: item.Name}
		if item.Price != nil {
			price := types.DisplayAmount(*item.Price)
			itemDTO.Price = &price
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	return dto
}

type saleItemDTO struct {
	Kind            string  `json:"kind"`
	Name            string  `json:"name"`
	Qty             int     `json:"qty"`
	UnitPrice       string  `json:"unit_price"`
	Weight          *string `json:"weight,omitempty"`
	CalculatedPrice *string `json:"calculated_price,omitempty"`
	CustomPrice     *string `json:"custom_price,omitempty"`
	LineTotal       string  `json:"line_total"`
}

type saleDTO struct {
	ID              string        `json:"id"`
	OccurredAt      time.Time     `json:"occurred_at"`
	PaymentMethod   string        `json:"payment_method"`
	Subtotal        string        `json:"subtotal"`
	Discount        string        `json:"discount"`
	Total           string        `json:"total"`
	AmountCharged   string        `json:"amount_charged"`
	ChangeGiven     string        `json:"change_given"`
	IsPartial       bool          `json:"is_partial"`
	RemainingAmount string        `json:"remaining_amount"`
	CustomerName    *string       `json:"customer_name,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	Items           []saleItemDTO `json:"items"`
}

func saleFromModel(sale models.Sale) saleDTO {
	dto := saleDTO{
		ID:              sale.ID.String(),
		OccurredAt:      sale.OccurredAt,
		PaymentMethod:   sale.PaymentMethod.String(),
		Subtotal:        types.DisplayAmount(sale.SubtotalAmount),
		Discount:        types.DisplayAmount(sale.DiscountAmount),
		Total:           types.DisplayAmount(sale.TotalAmount),
		AmountCharged:   types.DisplayAmount(sale.AmountCharged),
		ChangeGiven:     types.DisplayAmount(sale.ChangeGiven),
		IsPartial:       sale.IsPartial,
		RemainingAmount: types.DisplayAmount(sale.RemainingAmount),
		CustomerName:    sale.CustomerName,
		Notes:           sale.Notes,
		Items:           make([]saleItemDTO, 0, len(sale.Items)),
	}
	for _, item := range sale.Items {
		itemDTO := saleItemDTO{
			Kind:      item.Kind.String(),
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: types.DisplayAmount(item.UnitPrice),
			LineTotal: types.DisplayAmount(item.LineTotal),
		}
		if item.Weight != nil {
			weight := item.Weight.String()
			itemDTO.Weight = &weight
		}
		if item.CalculatedPrice != nil {
			calculated := types.DisplayAmount(*item.CalculatedPrice)
			itemDTO.CalculatedPrice = &calculated
		}
		if item.CustomPrice != nil {
			custom := types.DisplayAmount(*item.CustomPrice)
			itemDTO.CustomPrice = &custom
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	return dto
}

type reminderDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	DueAt     time.Time `json:"due_at"`
	SaleID    *string   `json:"sale_id,omitempty"`
	AmountDue string    `json:"amount_due"`
	Completed bool      `json:"completed"`
}

func reminderFromModel(reminder models.Reminder) reminderDTO {
	dto := reminderDTO{
		ID:        reminder.ID.String(),
		Title:     reminder.Title,
		Body:      reminder.Body,
		DueAt:     reminder.DueAt,
		AmountDue: types.DisplayAmount(reminder.AmountDue),
		Completed: reminder.Completed,
	}
	if reminder.SaleID != nil {
		saleID := reminder.SaleID.String()
		dto.SaleID = &saleID
	}
	return dto
}
