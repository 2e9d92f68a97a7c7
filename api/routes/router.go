package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillview/tillview-backend/api/controllers"
	"github.com/tillview/tillview-backend/api/middleware"
	"github.com/tillview/tillview-backend/internal/catalog"
	checkoutsvc "github.com/tillview/tillview-backend/internal/checkout"
	"github.com/tillview/tillview-backend/internal/reminders"
	"github.com/tillview/tillview-backend/internal/sales"
	"github.com/tillview/tillview-backend/pkg/config"
	"github.com/tillview/tillview-backend/pkg/logger"
	pkgredis "github.com/tillview/tillview-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Logger           *logger.Logger
	DB               controllers.Pinger
	Redis            *pkgredis.Client
	IdempotencyStore pkgredis.IdempotencyStore
	Registry         *prometheus.Registry
	Settlement       config.SettlementConfig

	Checkout  *checkoutsvc.Manager
	Catalog   catalog.Service
	Sales     sales.Service
	Reminders reminders.Service
}

// NewRouter wires middleware and controllers into the chi router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
			r.Get("/products/{productID}", controllers.GetProduct(deps.Catalog, logg))
			r.Get("/side-businesses", controllers.ListSideBusinesses(deps.Catalog, logg))
		})

		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", controllers.OpenSession(deps.Checkout, logg))
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", controllers.GetSession(deps.Checkout, logg))
				r.Delete("/", controllers.CloseSession(deps.Checkout, logg))
				r.Post("/items", controllers.AddItem(deps.Checkout, logg))
				r.Patch("/items/{lineID}", controllers.UpdateItem(deps.Checkout, logg))
				r.Delete("/items/{lineID}", controllers.RemoveItem(deps.Checkout, logg))
				r.Put("/discount", controllers.SetDiscount(deps.Checkout, logg))
				r.Put("/partial-payment", controllers.UpdatePartialPayment(deps.Checkout, logg))
				r.Get("/installment-plan", controllers.InstallmentPlan(deps.Checkout, logg))
				r.With(middleware.Idempotency(deps.IdempotencyStore, deps.Settlement.IdempotencyTTL, logg)).
					Post("/settle", controllers.Settle(deps.Checkout, logg))
			})
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(deps.Sales, logg))
			r.Get("/{saleID}", controllers.GetSale(deps.Sales, logg))
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", controllers.ListReminders(deps.Reminders, logg))
			r.Post("/{reminderID}/complete", controllers.CompleteReminder(deps.Reminders, logg))
		})
	})

	return r
}
