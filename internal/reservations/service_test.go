package reservations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/internal/changes"
	"github.com/cjdworks/stockpos-backend/internal/inventory"
	"github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/pkg/db"
	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:reservations_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.InventoryItem{}, &models.Reservation{}, &models.LogEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func newTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gdb), nil)
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	svc, err := NewService(NewRepository(gdb), inventory.NewRepository(gdb), db.NewFromGorm(gdb), ledgerSvc, changes.NoopNotifier{})
	if err != nil {
		t.Fatalf("reservation service: %v", err)
	}
	return svc
}

func seedItem(t *testing.T, gdb *gorm.DB, stocks int, price string) *models.InventoryItem {
	t.Helper()

	item := &models.InventoryItem{
		AccountName: "Acme",
		ProductName: "Widget",
		AccountKey:  "acme",
		ProductKey:  "widget",
		Stocks:      stocks,
		PriceEach:   decimal.RequireFromString(price),
	}
	if err := gdb.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func TestReserveCopiesPriceAndSkipsStockCheck(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()
	item := seedItem(t, gdb, 2, "5.00")

	// quantity exceeds what is on hand; the hold is still accepted and the
	// shortfall only surfaces through derived availability
	reservation, err := svc.Reserve(ctx, ReserveInput{
		InventoryID: item.ID,
		ClientName:  "carla",
		Quantity:    10,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if reservation.Status != enums.ReservationStatusPending {
		t.Fatalf("status = %s, want pending", reservation.Status)
	}
	if !reservation.PriceEach.Equal(item.PriceEach) {
		t.Fatalf("price not copied: %s", reservation.PriceEach)
	}

	var entry models.LogEntry
	if err := gdb.First(&entry, "inventory_id = ?", item.ID).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if entry.Action != enums.LogActionReserve || entry.OldStock != entry.NewStock {
		t.Fatalf("unexpected reserve log %+v", entry)
	}
}

func TestReserveUnknownItem(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))

	_, err := svc.Reserve(context.Background(), ReserveInput{
		InventoryID: uuid.New(),
		ClientName:  "carla",
		Quantity:    1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConfirmMovesSoldStocks(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()
	item := seedItem(t, gdb, 10, "4.00")

	reservation, err := svc.Reserve(ctx, ReserveInput{InventoryID: item.ID, ClientName: "carla", Quantity: 3})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	confirmed, err := svc.Confirm(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != enums.ReservationStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", confirmed.Status)
	}

	var reloaded models.InventoryItem
	if err := gdb.First(&reloaded, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if reloaded.SoldStocks != 3 {
		t.Fatalf("sold_stocks = %d, want 3", reloaded.SoldStocks)
	}

	var entry models.LogEntry
	if err := gdb.First(&entry, "inventory_id = ? AND action = ?", item.ID, enums.LogActionConfirm).Error; err != nil {
		t.Fatalf("load confirm log: %v", err)
	}
	if !entry.SalesAmount.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("sales_amount = %s, want 12.00", entry.SalesAmount)
	}
	if entry.OldStock != 10 || entry.NewStock != 7 {
		t.Fatalf("unexpected stock delta %d -> %d", entry.OldStock, entry.NewStock)
	}
}

func TestConfirmUsesReservedPrice(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()
	item := seedItem(t, gdb, 10, "4.00")

	reservation, err := svc.Reserve(ctx, ReserveInput{InventoryID: item.ID, ClientName: "carla", Quantity: 2})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// price edits after the hold must not change what the client owes
	if err := gdb.Model(&models.InventoryItem{}).
		Where("id = ?", item.ID).
		Update("price_each", decimal.RequireFromString("99.00")).Error; err != nil {
		t.Fatalf("reprice item: %v", err)
	}

	if _, err := svc.Confirm(ctx, reservation.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	var entry models.LogEntry
	if err := gdb.First(&entry, "inventory_id = ? AND action = ?", item.ID, enums.LogActionConfirm).Error; err != nil {
		t.Fatalf("load confirm log: %v", err)
	}
	if !entry.SalesAmount.Equal(decimal.RequireFromString("8.00")) {
		t.Fatalf("sales_amount = %s, want 8.00", entry.SalesAmount)
	}
}

func TestConfirmTwice(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()
	item := seedItem(t, gdb, 10, "4.00")

	reservation, err := svc.Reserve(ctx, ReserveInput{InventoryID: item.ID, ClientName: "carla", Quantity: 3})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.Confirm(ctx, reservation.ID); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	_, err = svc.Confirm(ctx, reservation.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	var reloaded models.InventoryItem
	if err := gdb.First(&reloaded, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if reloaded.SoldStocks != 3 {
		t.Fatalf("double confirm must not double sold_stocks: got %d", reloaded.SoldStocks)
	}
}

func TestConfirmAfterCancel(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()
	item := seedItem(t, gdb, 10, "4.00")

	reservation, err := svc.Reserve(ctx, ReserveInput{InventoryID: item.ID, ClientName: "carla", Quantity: 3})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.Cancel(ctx, reservation.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err = svc.Confirm(ctx, reservation.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["status"] != enums.ReservationStatusCancelled {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestConfirmUnknownReservation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))

	_, err := svc.Confirm(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelReleasesHold(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()
	item := seedItem(t, gdb, 10, "4.00")

	reservation, err := svc.Reserve(ctx, ReserveInput{InventoryID: item.ID, ClientName: "carla", Quantity: 4})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	invRepo := inventory.NewRepository(gdb)
	pending, err := invRepo.PendingQuantity(ctx, item.ID)
	if err != nil {
		t.Fatalf("pending qty: %v", err)
	}
	if pending != 4 {
		t.Fatalf("pending = %d, want 4", pending)
	}

	cancelled, err := svc.Cancel(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.ReservationStatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	pending, err = invRepo.PendingQuantity(ctx, item.ID)
	if err != nil {
		t.Fatalf("pending qty: %v", err)
	}
	if pending != 0 {
		t.Fatalf("cancel must release the hold, still %d pending", pending)
	}

	var reloaded models.InventoryItem
	if err := gdb.First(&reloaded, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if reloaded.SoldStocks != 0 {
		t.Fatalf("cancel must not touch sold_stocks: got %d", reloaded.SoldStocks)
	}
}

func TestListFiltersByStatusAndSearch(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()
	item := seedItem(t, gdb, 10, "4.00")

	first, err := svc.Reserve(ctx, ReserveInput{InventoryID: item.ID, ClientName: "Carla", Quantity: 1})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	second, err := svc.Reserve(ctx, ReserveInput{InventoryID: item.ID, ClientName: "Ben", Quantity: 1})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.Cancel(ctx, second.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	pendingStatus := enums.ReservationStatusPending
	result, err := svc.List(ctx, ListQuery{Status: &pendingStatus})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Reservations) != 1 || result.Reservations[0].ID != first.ID {
		t.Fatalf("unexpected status filter result %+v", result.Reservations)
	}

	result, err = svc.List(ctx, ListQuery{Search: "carla"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Reservations) != 1 || result.Reservations[0].ClientName != "Carla" {
		t.Fatalf("unexpected search result %+v", result.Reservations)
	}
}
