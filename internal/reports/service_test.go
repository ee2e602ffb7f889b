package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.InventoryItem{}, &models.Reservation{}, &models.LogEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedEntry(t *testing.T, gdb *gorm.DB, inventoryID uuid.UUID, action enums.LogAction, at time.Time, quantity int, amount string) {
	t.Helper()

	if err := gdb.Create(&models.LogEntry{
		InventoryID: inventoryID,
		Timestamp:   at,
		AccountName: "acme",
		ProductName: "widget",
		Action:      action,
		Quantity:    quantity,
		SalesAmount: decimal.RequireFromString(amount),
	}).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
}

func TestSalesReportGroupsByDay(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc, err := NewService(ledger.NewRepository(gdb))
	if err != nil {
		t.Fatalf("reports service: %v", err)
	}

	inventoryID := uuid.New()
	day1 := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC)

	seedEntry(t, gdb, inventoryID, enums.LogActionSell, day1, 2, "8.00")
	seedEntry(t, gdb, inventoryID, enums.LogActionConfirm, day1.Add(3*time.Hour), 1, "4.00")
	seedEntry(t, gdb, inventoryID, enums.LogActionSell, day2, 3, "12.00")
	// restocks and holds never count as revenue
	seedEntry(t, gdb, inventoryID, enums.LogActionRestock, day1, 50, "0")
	seedEntry(t, gdb, inventoryID, enums.LogActionReserve, day2, 5, "0")

	report, err := svc.SalesReport(context.Background(), ReportInput{
		From: day1,
		To:   day2.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("sales report: %v", err)
	}

	if len(report.Days) != 2 {
		t.Fatalf("expected 2 day rows, got %d", len(report.Days))
	}
	first := report.Days[0]
	if first.Date != "2025-08-01" || first.Units != 3 || !first.Amount.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("unexpected first day %+v", first)
	}
	second := report.Days[1]
	if second.Date != "2025-08-02" || second.Units != 3 || !second.Amount.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("unexpected second day %+v", second)
	}
	if report.TotalUnits != 6 || !report.Total.Equal(decimal.RequireFromString("24.00")) {
		t.Fatalf("unexpected totals units=%d total=%s", report.TotalUnits, report.Total)
	}
}

func TestSalesReportWindowIsExclusive(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc, err := NewService(ledger.NewRepository(gdb))
	if err != nil {
		t.Fatalf("reports service: %v", err)
	}

	boundary := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	seedEntry(t, gdb, uuid.New(), enums.LogActionSell, boundary, 1, "4.00")

	report, err := svc.SalesReport(context.Background(), ReportInput{
		From: boundary.Add(-24 * time.Hour),
		To:   boundary,
	})
	if err != nil {
		t.Fatalf("sales report: %v", err)
	}
	if report.TotalUnits != 0 {
		t.Fatalf("entry at the exclusive upper bound must not count, got %d units", report.TotalUnits)
	}
}

func TestSalesReportRejectsBadWindow(t *testing.T) {
	t.Parallel()

	svc, err := NewService(ledger.NewRepository(newTestDB(t)))
	if err != nil {
		t.Fatalf("reports service: %v", err)
	}
	ctx := context.Background()
	now := time.Now()

	cases := []ReportInput{
		{},
		{From: now},
		{From: now, To: now},
		{From: now, To: now.Add(-time.Hour)},
	}
	for i, input := range cases {
		_, err := svc.SalesReport(ctx, input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}
