package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cjdworks/stockpos-backend/api/controllers"
	"github.com/cjdworks/stockpos-backend/api/middleware"
	"github.com/cjdworks/stockpos-backend/internal/changes"
	"github.com/cjdworks/stockpos-backend/internal/inventory"
	"github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/internal/reports"
	"github.com/cjdworks/stockpos-backend/internal/reservations"
	"github.com/cjdworks/stockpos-backend/internal/sales"
	"github.com/cjdworks/stockpos-backend/pkg/config"
	"github.com/cjdworks/stockpos-backend/pkg/db"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
	"github.com/cjdworks/stockpos-backend/pkg/metrics"
	"github.com/cjdworks/stockpos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	registry *prometheus.Registry,
	inventoryService inventory.Service,
	reservationService reservations.Service,
	salesService sales.Service,
	ledgerService ledger.Service,
	reportsService reports.Service,
	streamer *changes.Streamer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/inventory", controllers.InventoryList(inventoryService, logg))
		r.Post("/inventory", controllers.InventoryRestock(inventoryService, logg))
		r.Get("/inventory/{id}", controllers.InventoryGet(inventoryService, logg))
		r.Patch("/inventory/{id}", controllers.InventoryUpdate(inventoryService, logg))
		r.Delete("/inventory/{id}", controllers.InventoryDelete(inventoryService, logg))

		r.Get("/reservations", controllers.ReservationList(reservationService, logg))
		r.Post("/reservations", controllers.ReservationCreate(reservationService, logg))
		r.Post("/reservations/{id}/confirm", controllers.ReservationConfirm(reservationService, logg))
		r.Post("/reservations/{id}/cancel", controllers.ReservationCancel(reservationService, logg))

		r.Post("/transactions/sell", controllers.TransactionSell(salesService, logg))
		r.Get("/logs", controllers.LogsList(ledgerService, logg))
		r.Get("/reports/sales", controllers.SalesReport(reportsService, logg))
		r.Get("/changes", controllers.ChangesStream(streamer, cfg.Changes.SSEHeartbeat, logg))
	})

	return r
}
