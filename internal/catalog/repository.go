package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillview/tillview-backend/pkg/db/models"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/pagination"
)

// Repository wires together catalog persistence for products and side
// business items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindProductByID loads one product row.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductByBarcode loads the active product carrying the scanned barcode.
func (r *Repository) FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "barcode = ? AND is_active = true", barcode).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProductsQuery filters and paginates the product listing.
type ListProductsQuery struct {
	Search   string
	Category string
	pagination.Params
}

// ListProducts returns active products ordered newest first, cursor-paged.
// It fetches one row past the limit so the caller can detect a next page.
func (r *Repository) ListProducts(ctx context.Context, query ListProductsQuery) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = true")

	if search := strings.TrimSpace(query.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where(
			"LOWER(name) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ? OR COALESCE(barcode, '') = ?",
			like, like, search,
		)
	}
	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}

	cursor, err := pagination.DecodeCursor(query.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	err = tx.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(query.Limit)).
		Find(&products).
		Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindSideBusinessItem loads one service item with its parent business.
func (r *Repository) FindSideBusinessItem(ctx context.Context, id uuid.UUID) (*models.SideBusinessItem, error) {
	var item models.SideBusinessItem
	err := r.db.WithContext(ctx).
		Preload("SideBusiness").
		First(&item, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListSideBusinesses returns every side business with its items.
func (r *Repository) ListSideBusinesses(ctx context.Context) ([]models.SideBusiness, error) {
	var businesses []models.SideBusiness
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("name ASC") }).
		Order("name ASC").
		Find(&businesses).
		Error
	if err != nil {
		return nil, err
	}
	return businesses, nil
}

// DecrementProductStock reduces stock for a settled unit-priced line. The
// guard keeps stock from going negative when two tills race on the last
// units; a guarded-out decrement is reported as a conflict so the caller
// can decide whether the sale survives it.
func (r *Repository) DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("stock for product %s is below %d, decrement skipped", productID, qty))
	}
	return nil
}
