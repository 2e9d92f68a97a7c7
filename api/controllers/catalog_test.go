package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/internal/catalog"
	"github.com/tillview/tillview-backend/internal/order"
	"github.com/tillview/tillview-backend/pkg/db/models"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
)

type stubCatalogService struct {
	listResult *catalog.ProductListResult
	product    *models.Product
	businesses []models.SideBusiness
	err        error
}

func (s stubCatalogService) ListProducts(context.Context, catalog.ListProductsQuery) (*catalog.ProductListResult, error) {
	return s.listResult, s.err
}

func (s stubCatalogService) GetProduct(context.Context, uuid.UUID) (*models.Product, error) {
	return s.product, s.err
}

func (s stubCatalogService) ListSideBusinesses(context.Context) ([]models.SideBusiness, error) {
	return s.businesses, s.err
}

func (s stubCatalogService) ResolveProduct(context.Context, uuid.UUID) (order.ProductInput, error) {
	return order.ProductInput{}, nil
}

func (s stubCatalogService) ResolveProductByBarcode(context.Context, string) (order.ProductInput, error) {
	return order.ProductInput{}, nil
}

func (s stubCatalogService) ResolveServiceItem(context.Context, uuid.UUID) (order.ServiceItemInput, error) {
	return order.ServiceItemInput{}, nil
}

func TestListProductsPage(t *testing.T) {
	svc := stubCatalogService{
		listResult: &catalog.ProductListResult{
			Products: []models.Product{
				{
					ID:        uuid.New(),
					Name:      "Flour 1kg",
					Category:  "pantry",
					Price:     decimal.RequireFromString("1.80"),
					StockQty:  12,
					CreatedAt: time.Now(),
				},
			},
			NextCursor: "opaque-cursor",
		},
	}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products?q=flour", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data productListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Products) != 1 {
		t.Fatalf("expected one product, got %d", len(envelope.Data.Products))
	}
	if envelope.Data.Products[0].Price != "1.80" {
		t.Fatalf("expected display price 1.80, got %s", envelope.Data.Products[0].Price)
	}
	if envelope.Data.NextCursor != "opaque-cursor" {
		t.Fatalf("cursor not passed through: %q", envelope.Data.NextCursor)
	}
}

func TestListProductsBadLimit(t *testing.T) {
	handler := ListProducts(stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products?limit=abc", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetProductNotFound(t *testing.T) {
	handler := GetProduct(stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/"+uuid.NewString(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productID", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListSideBusinessesWithItems(t *testing.T) {
	price := decimal.RequireFromString("15.00")
	svc := stubCatalogService{
		businesses: []models.SideBusiness{
			{
				ID:           uuid.New(),
				Name:         "Key Corner",
				BusinessType: "services",
				Items: []models.SideBusinessItem{
					{ID: uuid.New(), Name: "Key Cut", Price: &price},
					{ID: uuid.New(), Name: "Engraving"},
				},
			},
		},
	}
	handler := ListSideBusinesses(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/side-businesses", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []sideBusinessDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	items := envelope.Data[0].Items
	if len(items) != 2 {
		t.Fatalf("expected two items, got %d", len(items))
	}
	if items[0].Price == nil || *items[0].Price != "15.00" {
		t.Fatalf("expected priced item, got %+v", items[0])
	}
	if items[1].Price != nil {
		t.Fatal("unpriced item should have nil price")
	}
}
