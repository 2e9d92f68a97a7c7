package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillview/tillview-backend/pkg/db/models"
)

// Repository owns sale and customer persistence.
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

// CreateSale inserts the sale row together with its items.
func (r *Repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// FindCustomerByName returns the most recent customer with an exact,
// case-insensitive name match.
func (r *Repository) FindCustomerByName(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Order("created_at DESC").
		First(&customer).
		Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer inserts a new customer row.
func (r *Repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// ListSalesQuery filters the sales listing.
type ListSalesQuery struct {
	From        *time.Time
	To          *time.Time
	PartialOnly bool
	Limit       int
}

// ListSales returns settled sales newest first with their items.
func (r *Repository) ListSales(ctx context.Context, query ListSalesQuery) ([]models.Sale, error) {
	tx := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Items")
	if query.From != nil {
		tx = tx.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		tx = tx.Where("occurred_at < ?", *query.To)
	}
	if query.PartialOnly {
		tx = tx.Where("is_partial = true AND remaining_amount > 0")
	}
	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var sales []models.Sale
	if err := tx.Order("occurred_at DESC").Limit(limit).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindSaleByID loads one sale with its items.
func (r *Repository) FindSaleByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
