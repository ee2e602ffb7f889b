package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/internal/changes"
	"github.com/cjdworks/stockpos-backend/internal/inventory"
	"github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/internal/reports"
	"github.com/cjdworks/stockpos-backend/internal/reservations"
	"github.com/cjdworks/stockpos-backend/internal/sales"
	"github.com/cjdworks/stockpos-backend/pkg/config"
	"github.com/cjdworks/stockpos-backend/pkg/db"
	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
	"github.com/cjdworks/stockpos-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.InventoryItem{}, &models.Reservation{}, &models.LogEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	dbClient := db.NewFromGorm(gdb)

	ledgerRepo := ledger.NewRepository(gdb)
	ledgerService, err := ledger.NewService(ledgerRepo, nil)
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	invRepo := inventory.NewRepository(gdb)
	inventoryService, err := inventory.NewService(invRepo, dbClient, ledgerService, changes.NoopNotifier{})
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	reservationService, err := reservations.NewService(reservations.NewRepository(gdb), invRepo, dbClient, ledgerService, changes.NoopNotifier{})
	if err != nil {
		t.Fatalf("reservation service: %v", err)
	}
	salesService, err := sales.NewService(invRepo, dbClient, ledgerService, changes.NoopNotifier{})
	if err != nil {
		t.Fatalf("sales service: %v", err)
	}
	reportsService, err := reports.NewService(ledgerRepo)
	if err != nil {
		t.Fatalf("reports service: %v", err)
	}

	router := NewRouter(
		&config.Config{App: config.AppConfig{Env: "dev"}},
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		nil,
		nil,
		inventoryService,
		reservationService,
		salesService,
		ledgerService,
		reportsService,
		nil,
	)
	return router, gdb
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-StockPOS-Env") != "dev" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-StockPOS-Env"))
	}
}

func TestHealthReadyReportsRedisDown(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with no redis backend, got %d", rec.Code)
	}
}

func TestInventoryListThroughRouter(t *testing.T) {
	router, gdb := newTestRouter(t)

	item := &models.InventoryItem{
		AccountName: "Acme",
		ProductName: "Widget",
		AccountKey:  "acme",
		ProductKey:  "widget",
		Stocks:      7,
		PriceEach:   decimal.RequireFromString("4.00"),
	}
	if err := gdb.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Data struct {
			Items []struct {
				ProductName string `json:"product_name"`
				Available   int    `json:"available"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Items) != 1 || payload.Data.Items[0].Available != 7 {
		t.Fatalf("unexpected payload %s", rec.Body.String())
	}
}

func TestSellRequiresIdempotencyKey(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/sell", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing Idempotency-Key, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
