// Package checkout owns the live sessions of the till: it resolves catalog
// rows into cart mutations, keeps the payment planner in step with the cart
// total, and drives settlement through the coordinator.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview-backend/internal/catalog"
	"github.com/tillview/tillview-backend/internal/order"
	"github.com/tillview/tillview-backend/internal/payments"
	"github.com/tillview/tillview-backend/internal/settlement"
	"github.com/tillview/tillview-backend/pkg/config"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
	"github.com/tillview/tillview-backend/pkg/logger"
)

type settler interface {
	Settle(ctx context.Context, ord order.Order, plan payments.Snapshot, decision settlement.Decision) (*settlement.Result, error)
}

type catalogResolver interface {
	ResolveProduct(ctx context.Context, id uuid.UUID) (order.ProductInput, error)
	ResolveProductByBarcode(ctx context.Context, barcode string) (order.ProductInput, error)
	ResolveServiceItem(ctx context.Context, id uuid.UUID) (order.ServiceItemInput, error)
}

var _ catalogResolver = (catalog.Service)(nil)

// Manager holds every open session and serializes each one's lifecycle.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	catalog     catalogResolver
	coordinator settler
	cfg         config.SettlementConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewManager constructs the session manager.
func NewManager(
	catalogSvc catalogResolver,
	coordinator settler,
	cfg config.SettlementConfig,
	logg *logger.Logger,
) (*Manager, error) {
	if catalogSvc == nil {
		return nil, fmt.Errorf("checkout manager requires a catalog service")
	}
	if coordinator == nil {
		return nil, fmt.Errorf("checkout manager requires a settlement coordinator")
	}
	if logg == nil {
		return nil, fmt.Errorf("checkout manager requires a logger")
	}
	return &Manager{
		sessions:    map[uuid.UUID]*Session{},
		catalog:     catalogSvc,
		coordinator: coordinator,
		cfg:         cfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Open starts a fresh session and returns its view.
func (m *Manager) Open(ctx context.Context) View {
	session := newSession(m.now())

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logg.Info(m.logg.WithSessionID(ctx, session.ID.String()), "checkout session opened")
	return session.read()
}

// Get returns the current view of a session.
func (m *Manager) Get(sessionID uuid.UUID) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.read(), nil
}

// Close drops a session without settling it.
func (m *Manager) Close(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}
	delete(m.sessions, sessionID)
	m.logg.Info(m.logg.WithSessionID(ctx, sessionID.String()), "checkout session closed")
	return nil
}

// AddResult pairs the post-mutation view with the add outcome, so callers
// can surface stock rejections without treating them as failures.
type AddResult struct {
	View    View
	Outcome order.AddOutcome
}

// AddProduct resolves the product and adds one unit of it to the cart.
func (m *Manager) AddProduct(ctx context.Context, sessionID, productID uuid.UUID) (AddResult, error) {
	input, err := m.catalog.ResolveProduct(ctx, productID)
	if err != nil {
		return AddResult{}, err
	}
	return m.addProductInput(sessionID, input)
}

// AddProductByBarcode is the scanner path of AddProduct.
func (m *Manager) AddProductByBarcode(ctx context.Context, sessionID uuid.UUID, barcode string) (AddResult, error) {
	input, err := m.catalog.ResolveProductByBarcode(ctx, barcode)
	if err != nil {
		return AddResult{}, err
	}
	return m.addProductInput(sessionID, input)
}

func (m *Manager) addProductInput(sessionID uuid.UUID, input order.ProductInput) (AddResult, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return AddResult{}, err
	}

	outcome := order.AddAccepted
	view, err := session.mutate(m.now(), func() error {
		var addErr error
		outcome, addErr = session.store.AddProduct(input)
		return addErr
	})
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{View: view, Outcome: outcome}, nil
}

// AddWeightedProduct adds a weighed line for the product.
func (m *Manager) AddWeightedProduct(ctx context.Context, sessionID, productID uuid.UUID, weight decimal.Decimal) (View, error) {
	input, err := m.catalog.ResolveProduct(ctx, productID)
	if err != nil {
		return View{}, err
	}

	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.mutate(m.now(), func() error {
		return session.store.AddWeightedProduct(input, weight)
	})
}

// AddService adds a side-business item, optionally at a custom price.
func (m *Manager) AddService(ctx context.Context, sessionID, itemID uuid.UUID, customPrice *decimal.Decimal) (View, error) {
	input, err := m.catalog.ResolveServiceItem(ctx, itemID)
	if err != nil {
		return View{}, err
	}

	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.mutate(m.now(), func() error {
		return session.store.AddService(input, customPrice)
	})
}

// UpdateLineQuantity sets the quantity of a unit-priced line. Zero removes
// the line.
func (m *Manager) UpdateLineQuantity(sessionID, lineID uuid.UUID, quantity int) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.mutate(m.now(), func() error {
		return session.store.UpdateQuantity(lineID, quantity)
	})
}

// UpdateLineWeight re-weighs a weight-priced line. Zero removes the line.
func (m *Manager) UpdateLineWeight(sessionID, lineID uuid.UUID, weight decimal.Decimal) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.mutate(m.now(), func() error {
		return session.store.UpdateWeight(lineID, weight)
	})
}

// RemoveLine removes a line by its id.
func (m *Manager) RemoveLine(sessionID, lineID uuid.UUID) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.mutate(m.now(), func() error {
		return session.store.Remove(lineID)
	})
}

// SetDiscount applies a flat discount to the order.
func (m *Manager) SetDiscount(sessionID uuid.UUID, discount decimal.Decimal) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.mutate(m.now(), func() error {
		return session.store.SetDiscount(discount)
	})
}

// PartialPaymentUpdate mutates the planner in one call. Nil fields are left
// untouched.
type PartialPaymentUpdate struct {
	Enabled    *bool
	AmountPaid *decimal.Decimal
	DueDate    *time.Time
	Notes      *string
}

// UpdatePartialPayment applies the update to the session's planner.
func (m *Manager) UpdatePartialPayment(sessionID uuid.UUID, update PartialPaymentUpdate) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.mutate(m.now(), func() error {
		if update.Enabled != nil {
			if *update.Enabled {
				session.planner.Enable()
			} else {
				session.planner.Disable()
			}
		}
		if update.AmountPaid != nil {
			if err := session.planner.SetAmount(*update.AmountPaid); err != nil {
				return err
			}
		}
		if update.DueDate != nil {
			session.planner.SetDueDate(update.DueDate)
		}
		if update.Notes != nil {
			session.planner.SetNotes(*update.Notes)
		}
		return nil
	})
}

// InstallmentPlan previews how the session's outstanding balance would be
// collected over count installments starting at start.
func (m *Manager) InstallmentPlan(sessionID uuid.UUID, count int, start time.Time) (*payments.InstallmentPlan, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}
	view := session.read()
	return payments.BuildInstallmentPlan(view.Plan, count, start, m.cfg.InstallmentSpacingDays)
}

// Settle freezes the session, runs the settlement pipeline, and resets the
// session when the sale commits. Any failure leaves the cart untouched and
// unlatched so the cashier can retry.
func (m *Manager) Settle(ctx context.Context, sessionID uuid.UUID, decision settlement.Decision) (*settlement.Result, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}

	ord, plan, err := session.beginSettle()
	if err != nil {
		return nil, err
	}

	result, err := m.coordinator.Settle(ctx, ord, plan, decision)
	session.endSettle(m.now(), err == nil)
	if err != nil {
		return nil, err
	}

	ctx = m.logg.WithSessionID(ctx, sessionID.String())
	m.logg.Info(m.logg.WithSaleID(ctx, result.Sale.ID.String()), "session settled")
	return result, nil
}

// PruneIdle drops sessions untouched for longer than the configured TTL and
// returns how many were removed. Settling sessions are left alone.
func (m *Manager) PruneIdle(ctx context.Context) int {
	if m.cfg.SessionTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.SessionTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, session := range m.sessions {
		session.mu.Lock()
		expired := !session.settling && session.touchedAt.Before(cutoff)
		session.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		m.logg.Info(ctx, fmt.Sprintf("pruned %d idle checkout sessions", pruned))
	}
	return pruned
}

// RunJanitor prunes idle sessions on an interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.PruneIdle(ctx)
		}
	}
}

func (m *Manager) session(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[id]; ok {
		return session, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
}
