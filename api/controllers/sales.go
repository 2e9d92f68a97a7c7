package controllers

import (
	"net/http"
	"time"

	"github.com/tillview/tillview-backend/api/responses"
	"github.com/tillview/tillview-backend/api/validators"
	"github.com/tillview/tillview-backend/internal/sales"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/logger"
)

func parseQueryTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be an RFC3339 timestamp")
	}
	return &parsed, nil
}

// ListSales returns settled sales newest first, optionally filtered by time
// window or by open partial balances.
func ListSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := parseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := parseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListSales(r.Context(), sales.ListSalesQuery{
			From:        from,
			To:          to,
			PartialOnly: validators.ParseQueryBool(r, "partial"),
			Limit:       limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]saleDTO, 0, len(records))
		for _, sale := range records {
			resp = append(resp, saleFromModel(sale))
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetSale returns one settled sale with its items.
func GetSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := pathUUID(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.GetSale(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saleFromModel(*sale))
	}
}
