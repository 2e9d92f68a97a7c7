package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/api/responses"
	"github.com/tillview/tillview-backend/api/validators"
	"github.com/tillview/tillview-backend/internal/checkout"
	"github.com/tillview/tillview-backend/internal/order"
	"github.com/tillview/tillview-backend/internal/settlement"
	"github.com/tillview/tillview-backend/pkg/enums"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/logger"
	"github.com/tillview/tillview-backend/pkg/types"
)

// OpenSession starts an empty checkout session.
func OpenSession(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := manager.Open(r.Context())
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionFromView(view))
	}
}

// GetSession returns the current cart and partial payment state.
func GetSession(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := manager.Get(sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionFromView(view))
	}
}

// CloseSession discards a session without settling it.
func CloseSession(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := manager.Close(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}

type addItemRequest struct {
	Kind        string           `json:"kind" validate:"required,oneof=product service"`
	ProductID   *uuid.UUID       `json:"product_id,omitempty"`
	Barcode     string           `json:"barcode,omitempty"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
	ItemID      *uuid.UUID       `json:"item_id,omitempty"`
	CustomPrice *decimal.Decimal `json:"custom_price,omitempty"`
}

type addItemResponse struct {
	Session sessionDTO `json:"session"`
	Outcome string     `json:"outcome"`
}

// AddItem adds a product or service line to the cart. Product adds report an
// explicit outcome so the till can surface stock rejections.
func AddItem(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch req.Kind {
		case "product":
			addProductItem(w, r, manager, logg, sessionID, req)
		case "service":
			addServiceItem(w, r, manager, logg, sessionID, req)
		}
	}
}

func addProductItem(w http.ResponseWriter, r *http.Request, manager *checkout.Manager, logg *logger.Logger, sessionID uuid.UUID, req addItemRequest) {
	if req.Weight != nil {
		if req.ProductID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required for weighted adds"))
			return
		}
		view, err := manager.AddWeightedProduct(r.Context(), sessionID, *req.ProductID, *req.Weight)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addItemResponse{Session: sessionFromView(view), Outcome: string(order.AddAccepted)})
		return
	}

	var (
		result checkout.AddResult
		err    error
	)
	switch {
	case req.ProductID != nil:
		result, err = manager.AddProduct(r.Context(), sessionID, *req.ProductID)
	case req.Barcode != "":
		result, err = manager.AddProductByBarcode(r.Context(), sessionID, req.Barcode)
	default:
		err = pkgerrors.New(pkgerrors.CodeValidation, "product_id or barcode is required")
	}
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, addItemResponse{Session: sessionFromView(result.View), Outcome: string(result.Outcome)})
}

func addServiceItem(w http.ResponseWriter, r *http.Request, manager *checkout.Manager, logg *logger.Logger, sessionID uuid.UUID, req addItemRequest) {
	if req.ItemID == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item_id is required for service adds"))
		return
	}
	view, err := manager.AddService(r.Context(), sessionID, *req.ItemID, req.CustomPrice)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, addItemResponse{Session: sessionFromView(view), Outcome: string(order.AddAccepted)})
}

type updateItemRequest struct {
	Quantity *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
}

// UpdateItem changes the quantity of a unit line or the weight of a
// weight-priced line.
func UpdateItem(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view checkout.View
		switch {
		case req.Quantity != nil:
			view, err = manager.UpdateLineQuantity(sessionID, lineID, *req.Quantity)
		case req.Weight != nil:
			view, err = manager.UpdateLineWeight(sessionID, lineID, *req.Weight)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "quantity or weight is required")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionFromView(view))
	}
}

// RemoveItem deletes one cart line.
func RemoveItem(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := manager.RemoveLine(sessionID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionFromView(view))
	}
}

type setDiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

// SetDiscount applies an order-level discount amount.
func SetDiscount(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setDiscountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := manager.SetDiscount(sessionID, req.Discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionFromView(view))
	}
}

type partialPaymentRequest struct {
	Enabled    *bool            `json:"enabled,omitempty"`
	AmountPaid *decimal.Decimal `json:"amount_paid,omitempty"`
	DueDate    *time.Time       `json:"due_date,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// UpdatePartialPayment toggles partial payment mode or adjusts the up-front
// amount, due date and notes.
func UpdatePartialPayment(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req partialPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := manager.UpdatePartialPayment(sessionID, checkout.PartialPaymentUpdate{
			Enabled:    req.Enabled,
			AmountPaid: req.AmountPaid,
			DueDate:    req.DueDate,
			Notes:      req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionFromView(view))
	}
}

// InstallmentPlan previews an even split of the outstanding balance.
func InstallmentPlan(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := validators.ParseQueryInt(r, "count", 3, 1, 60)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := manager.InstallmentPlan(sessionID, count, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, installmentPlanFromModel(plan))
	}
}

type settleRequest struct {
	Method         string           `json:"method" validate:"required,oneof=cash card credit"`
	TenderedAmount *decimal.Decimal `json:"tendered_amount,omitempty"`
	CustomerName   string           `json:"customer_name,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

type settleResponse struct {
	SaleID          string `json:"sale_id"`
	ChangeGiven     string `json:"change_given"`
	Remaining       string `json:"remaining"`
	ReminderCreated bool   `json:"reminder_created"`
}

// Settle finalizes the session into a persisted sale.
func Settle(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req settleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method"))
			return
		}

		ctx := logg.WithSessionID(r.Context(), sessionID.String())
		result, err := manager.Settle(ctx, sessionID, settlement.Decision{
			Method:         method,
			TenderedAmount: req.TenderedAmount,
			CustomerName:   req.CustomerName,
			Notes:          req.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, settleResponse{
			SaleID:          result.Sale.ID.String(),
			ChangeGiven:     types.DisplayAmount(result.ChangeGiven),
			Remaining:       types.DisplayAmount(result.Remaining),
			ReminderCreated: result.ReminderCreated,
		})
	}
}
