package checkout

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillview/tillview-backend/internal/order"
	"github.com/tillview/tillview-backend/internal/payments"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
)

// Session is one till's in-flight order: the cart, the partial payment
// planner, and a settling latch. All access goes through the mutex; the
// store and planner themselves are single-threaded.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	store    *order.Store
	planner  *payments.Planner
	settling bool

	createdAt time.Time
	touchedAt time.Time
}

func newSession(now time.Time) *Session {
	s := &Session{
		ID:        uuid.New(),
		planner:   payments.NewPlanner(),
		createdAt: now,
		touchedAt: now,
	}
	s.store = order.NewStore(func(product order.ProductInput, proposedQty int) bool {
		return proposedQty <= product.StockQty
	})
	return s
}

// View is the read model handed to the API layer: cloned lines, derived
// totals, and the payment plan state as of the call.
type View struct {
	SessionID uuid.UUID
	Order     order.Order
	Plan      payments.Snapshot
}

func (s *Session) view() View {
	return View{
		SessionID: s.ID,
		Order:     s.store.Snapshot(),
		Plan:      s.planner.Snapshot(),
	}
}

// mutate runs fn under the session mutex, refreshes the planner's total,
// and returns the resulting view. Mutations are rejected while a settle is
// in flight.
func (s *Session) mutate(now time.Time, fn func() error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settling {
		return View{}, pkgerrors.New(pkgerrors.CodeStateConflict, "session is settling")
	}
	if err := fn(); err != nil {
		return View{}, err
	}

	s.planner.SetTotal(s.store.Total())
	s.touchedAt = now
	return s.view(), nil
}

// read returns a consistent view without mutating anything.
func (s *Session) read() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// beginSettle latches the session for settlement and hands back frozen
// copies of the order and plan. The caller must finish with endSettle.
func (s *Session) beginSettle() (order.Order, payments.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settling {
		return order.Order{}, payments.Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict,
			"settlement already in progress")
	}
	if s.store.Snapshot().IsEmpty() {
		return order.Order{}, payments.Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict,
			"cannot settle an empty order")
	}
	s.settling = true
	return s.store.Snapshot(), s.planner.Snapshot(), nil
}

// endSettle releases the latch. A successful settlement resets the session
// for the next customer; a failed one leaves the cart exactly as it was.
func (s *Session) endSettle(now time.Time, succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settling = false
	if succeeded {
		s.store.Reset()
		s.planner = payments.NewPlanner()
	}
	s.touchedAt = now
}
