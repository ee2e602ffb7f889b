package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	"github.com/cjdworks/stockpos-backend/pkg/normalize"
	"github.com/cjdworks/stockpos-backend/pkg/pagination"
)

// Repository wires together inventory persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new inventory row.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save persists all fields of an existing inventory row.
func (r *Repository) Save(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindByID loads the inventory row without derived quantities.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByKeys loads the row matching the normalized account/product pair.
func (r *Repository) FindByKeys(ctx context.Context, accountKey, productKey string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		First(&item, "account_key = ? AND product_key = ?", accountKey, productKey).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the inventory row by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{}).Error
}

// PendingQuantity sums the units held by pending reservations for the item.
func (r *Repository) PendingQuantity(ctx context.Context, id uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("inventory_id = ? AND status = ?", id, enums.ReservationStatusPending).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// PendingReservations returns the open reservations holding units on the item.
func (r *Repository) PendingReservations(ctx context.Context, id uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND status = ?", id, enums.ReservationStatusPending).
		Order("date_reserved ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplySale adds quantity to sold_stocks only when enough unreserved stock
// remains. The availability check and the write happen in one statement so
// concurrent sales cannot both pass the check.
func (r *Repository) ApplySale(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
UPDATE inventory_items
SET sold_stocks = sold_stocks + ?, last_updated = CURRENT_TIMESTAMP
WHERE id = ?
  AND stocks - sold_stocks - COALESCE((
    SELECT SUM(quantity) FROM reservations
    WHERE reservations.inventory_id = inventory_items.id
      AND reservations.status = 'pending'
  ), 0) >= ?`, quantity, id, quantity)
	return res.RowsAffected, res.Error
}

// AddSold unconditionally adds quantity to sold_stocks. Used when a pending
// reservation is confirmed, since those units are already held.
func (r *Repository) AddSold(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE inventory_items
SET sold_stocks = sold_stocks + ?, last_updated = CURRENT_TIMESTAMP
WHERE id = ?`, quantity, id).Error
}

// ListQuery filters the inventory list.
type ListQuery struct {
	Pagination pagination.Params
	Search     string
}

// ListRow is one inventory row with its pending hold attached.
type ListRow struct {
	Item       models.InventoryItem
	PendingQty int
}

type itemRecord struct {
	ID          uuid.UUID
	AccountName string
	ProductName string
	AccountKey  string
	ProductKey  string
	Stocks      int
	SoldStocks  int
	PriceEach   decimal.Decimal
	InsertedBy  string
	LastUpdated time.Time
	PendingQty  int
}

// List pages through inventory rows with pending reservation sums included.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]ListRow, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Table("inventory_items").
		Select(`inventory_items.*, COALESCE(pending.pending_qty, 0) AS pending_qty`).
		Joins(`LEFT JOIN (
  SELECT inventory_id, SUM(quantity) AS pending_qty
  FROM reservations
  WHERE status = 'pending'
  GROUP BY inventory_id
) pending ON pending.inventory_id = inventory_items.id`)

	if search := normalize.Key(query.Search); search != "" {
		pattern := "%" + search + "%"
		qb = qb.Where("(inventory_items.account_key LIKE ? OR inventory_items.product_key LIKE ?)", pattern, pattern)
	}
	if cursor != nil {
		qb = qb.Where(
			"(inventory_items.last_updated < ?) OR (inventory_items.last_updated = ? AND inventory_items.id < ?)",
			cursor.Timestamp, cursor.Timestamp, cursor.ID,
		)
	}

	qb = qb.Order("inventory_items.last_updated DESC").Order("inventory_items.id DESC").Limit(limitWithBuffer)

	var records []itemRecord
	if err := qb.Scan(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > pageSize {
		records = records[:pageSize]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.LastUpdated, ID: last.ID})
	}

	rows := make([]ListRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, ListRow{
			Item: models.InventoryItem{
				ID:          record.ID,
				AccountName: record.AccountName,
				ProductName: record.ProductName,
				AccountKey:  record.AccountKey,
				ProductKey:  record.ProductKey,
				Stocks:      record.Stocks,
				SoldStocks:  record.SoldStocks,
				PriceEach:   record.PriceEach,
				InsertedBy:  record.InsertedBy,
				LastUpdated: record.LastUpdated,
			},
			PendingQty: record.PendingQty,
		})
	}
	return rows, nextCursor, nil
}
