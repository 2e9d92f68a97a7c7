// Package sales persists settled sales. The service is the commit side of
// the settlement pipeline: one transaction covers the sale row, its items,
// and the stock decrements those items imply.
package sales

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillview/tillview-backend/pkg/db/models"
	"github.com/tillview/tillview-backend/pkg/enums"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/logger"
)

// Service exposes sale persistence and read paths.
type Service interface {
	CommitSale(ctx context.Context, sale *models.Sale) error
	ListSales(ctx context.Context, query ListSalesQuery) ([]models.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockDecrementer reduces product stock as part of a sale commit.
type StockDecrementer interface {
	DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error
}

// StockAdjusterFactory binds the stock decrementer to the commit
// transaction so stock moves with the sale or not at all.
type StockAdjusterFactory func(tx *gorm.DB) StockDecrementer

type service struct {
	runner txRunner
	repo   *Repository
	stock  StockAdjusterFactory
	logg   *logger.Logger
}

// NewService constructs a sales service instance.
func NewService(runner txRunner, repo *Repository, stock StockAdjusterFactory, logg *logger.Logger) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{runner: runner, repo: repo, stock: stock, logg: logg}, nil
}

// CommitSale writes the sale, its items, and the implied stock decrements in
// one transaction. When a customer name is present the sale is linked to an
// existing customer or a new one; a failed lookup downgrades the sale to
// name-only rather than blocking the settlement.
func (s *service) CommitSale(ctx context.Context, sale *models.Sale) error {
	if sale == nil || len(sale.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale must carry at least one item")
	}

	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if sale.CustomerName != nil {
			sale.CustomerID = s.resolveCustomer(ctx, repo, *sale.CustomerName)
		}

		if err := repo.CreateSale(ctx, sale); err != nil {
			return err
		}

		if s.stock == nil {
			return nil
		}
		stock := s.stock(tx)
		for _, item := range sale.Items {
			if item.Kind != enums.LineKindProduct || item.ProductID == nil || item.Weight != nil {
				continue
			}
			if err := stock.DecrementProductStock(ctx, *item.ProductID, item.Qty); err != nil {
				// The goods already left the till. A stock count that
				// raced below the sold quantity is logged, not a reason
				// to lose the sale.
				if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
					s.logg.Warn(ctx, "stock not decremented for "+item.Name+": "+err.Error())
					continue
				}
				return err
			}
		}
		return nil
	})
}

// resolveCustomer finds or creates the named customer. Errors are logged and
// swallowed; the sale keeps the raw name either way.
func (s *service) resolveCustomer(ctx context.Context, repo *Repository, name string) *uuid.UUID {
	customer, err := repo.FindCustomerByName(ctx, name)
	if err == nil {
		return &customer.ID
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Warn(ctx, "customer lookup failed, keeping name only: "+err.Error())
		return nil
	}

	created := &models.Customer{Name: name}
	if err := repo.CreateCustomer(ctx, created); err != nil {
		s.logg.Warn(ctx, "customer create failed, keeping name only: "+err.Error())
		return nil
	}
	return &created.ID
}

func (s *service) ListSales(ctx context.Context, query ListSalesQuery) ([]models.Sale, error) {
	sales, err := s.repo.ListSales(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	return sales, nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindSaleByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	return sale, nil
}
