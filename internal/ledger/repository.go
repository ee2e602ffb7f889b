package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/normalize"
	"github.com/cjdworks/stockpos-backend/pkg/pagination"
)

// Repository manages persistence for log entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LogEntry) error
	List(ctx context.Context, query ListQuery) ([]models.LogEntry, string, error)
	ListSalesBetween(ctx context.Context, from, to time.Time) ([]models.LogEntry, error)
	DeleteByInventoryID(ctx context.Context, inventoryID uuid.UUID) error
}

// ListQuery filters the transaction log.
type ListQuery struct {
	Pagination pagination.Params
	Search     string
	From       *time.Time
	To         *time.Time
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a log entry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.LogEntry, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Table("log_entries").
		Select("log_entries.*").
		Joins("JOIN inventory_items ON inventory_items.id = log_entries.inventory_id")

	if search := normalize.Key(query.Search); search != "" {
		pattern := "%" + search + "%"
		qb = qb.Where(
			"(inventory_items.account_key LIKE ? OR inventory_items.product_key LIKE ? OR LOWER(log_entries.transact_by) LIKE ? OR log_entries.action LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}
	if query.From != nil {
		qb = qb.Where("log_entries.timestamp >= ?", *query.From)
	}
	if query.To != nil {
		qb = qb.Where("log_entries.timestamp < ?", *query.To)
	}
	if cursor != nil {
		qb = qb.Where(
			"(log_entries.timestamp < ?) OR (log_entries.timestamp = ? AND log_entries.id < ?)",
			cursor.Timestamp, cursor.Timestamp, cursor.ID,
		)
	}

	qb = qb.Order("log_entries.timestamp DESC").Order("log_entries.id DESC").Limit(limitWithBuffer)

	var rows []models.LogEntry
	if err := qb.Scan(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.Timestamp, ID: last.ID})
	}
	return rows, nextCursor, nil
}

func (r *repository) ListSalesBetween(ctx context.Context, from, to time.Time) ([]models.LogEntry, error) {
	var rows []models.LogEntry
	if err := r.db.WithContext(ctx).
		Where("action IN ?", []string{"sell", "confirm"}).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DeleteByInventoryID(ctx context.Context, inventoryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Delete(&models.LogEntry{}).Error
}
