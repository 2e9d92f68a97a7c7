// Package catalog exposes read paths over products and side business items
// and resolves catalog rows into the inputs the cart engine consumes.
package catalog

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillview/tillview-backend/internal/order"
	"github.com/tillview/tillview-backend/pkg/db/models"
	"github.com/tillview/tillview-backend/pkg/enums"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/pagination"
)

// Service exposes catalog lookups for the checkout flow and the API.
type Service interface {
	ListProducts(ctx context.Context, query ListProductsQuery) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListSideBusinesses(ctx context.Context) ([]models.SideBusiness, error)
	ResolveProduct(ctx context.Context, id uuid.UUID) (order.ProductInput, error)
	ResolveProductByBarcode(ctx context.Context, barcode string) (order.ProductInput, error)
	ResolveServiceItem(ctx context.Context, id uuid.UUID) (order.ServiceItemInput, error)
}

type productReader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	ListProducts(ctx context.Context, query ListProductsQuery) ([]models.Product, error)
	FindSideBusinessItem(ctx context.Context, id uuid.UUID) (*models.SideBusinessItem, error)
	ListSideBusinesses(ctx context.Context) ([]models.SideBusiness, error)
}

// ProductListResult is one page of products plus the cursor for the next.
type ProductListResult struct {
	Products   []models.Product
	NextCursor string
}

type service struct {
	repo productReader
}

// NewService constructs a catalog service instance.
func NewService(repo productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, query ListProductsQuery) (*ProductListResult, error) {
	products, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	result := &ProductListResult{Products: products}
	limit := pagination.NormalizeLimit(query.Limit)
	if len(products) > limit {
		result.Products = products[:limit]
		last := result.Products[limit-1]
		result.NextCursor = pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}.Encode()
	}
	return result, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) ListSideBusinesses(ctx context.Context) ([]models.SideBusiness, error) {
	businesses, err := s.repo.ListSideBusinesses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list side businesses")
	}
	return businesses, nil
}

// ResolveProduct turns a catalog row into cart input. Inactive products
// cannot be sold.
func (s *service) ResolveProduct(ctx context.Context, id uuid.UUID) (order.ProductInput, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return order.ProductInput{}, err
	}
	return productInput(product)
}

func (s *service) ResolveProductByBarcode(ctx context.Context, barcode string) (order.ProductInput, error) {
	product, err := s.repo.FindProductByBarcode(ctx, barcode)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return order.ProductInput{}, pkgerrors.New(pkgerrors.CodeNotFound, "no product with that barcode")
		}
		return order.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product by barcode")
	}
	return productInput(product)
}

func (s *service) ResolveServiceItem(ctx context.Context, id uuid.UUID) (order.ServiceItemInput, error) {
	item, err := s.repo.FindSideBusinessItem(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return order.ServiceItemInput{}, pkgerrors.New(pkgerrors.CodeNotFound, "service item not found")
		}
		return order.ServiceItemInput{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service item")
	}

	input := order.ServiceItemInput{
		ID:   item.ID,
		Name: item.Name,
	}
	if item.SideBusiness != nil {
		input.Name = fmt.Sprintf("%s: %s", item.SideBusiness.Name, item.Name)
	}
	if item.Price != nil {
		price := *item.Price
		input.Price = &price
	}
	return input, nil
}

func productInput(product *models.Product) (order.ProductInput, error) {
	if !product.IsActive {
		return order.ProductInput{}, pkgerrors.New(pkgerrors.CodeStateConflict, "product is inactive")
	}

	input := order.ProductInput{
		ID:         product.ID,
		Name:       product.Name,
		Price:      product.Price,
		IsWeighted: product.IsWeighted,
		StockQty:   product.StockQty,
	}
	if product.IsWeighted {
		if product.WeightUnit != nil {
			input.WeightUnit = *product.WeightUnit
		} else {
			input.WeightUnit = enums.WeightUnitKilogram
		}
		if product.PricePerUnit != nil {
			rate := *product.PricePerUnit
			input.PricePerUnit = &rate
		}
	}
	return input, nil
}
