package controllers

import (
	"net/http"

	"github.com/tillview/tillview-backend/api/responses"
	"github.com/tillview/tillview-backend/api/validators"
	"github.com/tillview/tillview-backend/internal/catalog"
	"github.com/tillview/tillview-backend/pkg/logger"
	"github.com/tillview/tillview-backend/pkg/pagination"
)

type productListResponse struct {
	Products   []productDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ListProducts returns the active catalog page matching the query filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), catalog.ListProductsQuery{
			Search:   r.URL.Query().Get("q"),
			Category: r.URL.Query().Get("category"),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := productListResponse{
			Products:   make([]productDTO, 0, len(result.Products)),
			NextCursor: result.NextCursor,
		}
		for _, product := range result.Products {
			resp.Products = append(resp.Products, productFromModel(product))
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetProduct returns one catalog product by id.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productFromModel(*product))
	}
}

// ListSideBusinesses returns every side business with its sellable items.
func ListSideBusinesses(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businesses, err := svc.ListSideBusinesses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]sideBusinessDTO, 0, len(businesses))
		for _, business := range businesses {
			resp = append(resp, sideBusinessFromModel(business))
		}
		responses.WriteSuccess(w, resp)
	}
}
