package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcabrera/tillpoint-backend/api/controllers"
	"github.com/rcabrera/tillpoint-backend/api/middleware"
	"github.com/rcabrera/tillpoint-backend/internal/catalog"
	checkoutsvc "github.com/rcabrera/tillpoint-backend/internal/checkout"
	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/orders"
	"github.com/rcabrera/tillpoint-backend/internal/printer"
	"github.com/rcabrera/tillpoint-backend/internal/tickets"
	"github.com/rcabrera/tillpoint-backend/pkg/config"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Cfg          *config.Config
	Logg         *logger.Logger
	Health       []controllers.Pinger
	Manager      *ledger.Manager
	CatalogSvc   catalog.Service
	OrdersSvc    orders.Service
	TicketsSvc   tickets.Service
	CheckoutSvc  checkoutsvc.Service
	Spooler      printer.Spooler
	PromRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Cfg
	logg := deps.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health...))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionState(deps.Manager, logg))
			r.Post("/items", controllers.SessionAddItem(deps.Manager, deps.CatalogSvc, cfg.Ledger, logg))
			r.Post("/order-lines", controllers.SessionAddOrderLine(deps.Manager, deps.OrdersSvc, cfg.Ledger, logg))
			r.Post("/focus", controllers.SessionFocus(deps.Manager, logg))
			r.Post("/focused/increase", controllers.SessionIncreaseQty(deps.Manager, cfg.Ledger, logg))
			r.Post("/focused/decrease", controllers.SessionDecreaseQty(deps.Manager, cfg.Ledger, logg))
			r.Put("/qty", controllers.SessionUpdateQty(deps.Manager, cfg.Ledger, logg))
			r.Post("/remove-line", controllers.SessionRemoveTicketLine(deps.Manager, logg))
			r.Post("/review", controllers.SessionReview(deps.Manager, logg))
			r.Post("/reset", controllers.SessionReset(deps.Manager, logg))
		})

		r.Get("/catalog/products", controllers.CatalogList(deps.CatalogSvc, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/outstanding", controllers.OrdersOutstanding(deps.OrdersSvc, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.OrdersSvc, logg))
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", controllers.TicketList(deps.TicketsSvc, logg))
			r.Post("/", controllers.TicketSave(deps.Manager, deps.TicketsSvc, logg))
			r.Post("/{ticketID}/import", controllers.TicketImport(deps.Manager, deps.TicketsSvc, cfg.Ledger, logg))
			r.Post("/{ticketID}/discard", controllers.TicketDiscard(deps.TicketsSvc, logg))
			r.Delete("/lines/{refID}", controllers.TicketDeleteLine(deps.TicketsSvc, logg))
		})

		r.Post("/checkout", controllers.CheckoutComplete(deps.Manager, deps.CheckoutSvc, deps.Spooler, logg))
	})

	return r
}
