package reservations

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	"github.com/cjdworks/stockpos-backend/pkg/normalize"
	"github.com/cjdworks/stockpos-backend/pkg/pagination"
)

// Repository manages persistence for reservations.
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

// Create inserts a new reservation row.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// FindByID loads a reservation by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateStatusIfPending flips a pending reservation to the target status.
// The status check and the write are one statement; zero affected rows means
// the reservation was missing or already terminal.
func (r *Repository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, enums.ReservationStatusPending).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// ListQuery filters the reservation list.
type ListQuery struct {
	Pagination pagination.Params
	Status     *enums.ReservationStatus
	Search     string
}

// List pages through reservations, newest first.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Reservation, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Table("reservations").
		Select("reservations.*").
		Joins("JOIN inventory_items ON inventory_items.id = reservations.inventory_id")

	if query.Status != nil {
		qb = qb.Where("reservations.status = ?", *query.Status)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		keyPattern := "%" + normalize.Key(search) + "%"
		namePattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(inventory_items.account_key LIKE ? OR inventory_items.product_key LIKE ? OR LOWER(reservations.client_name) LIKE ?)",
			keyPattern, keyPattern, namePattern,
		)
	}
	if cursor != nil {
		qb = qb.Where(
			"(reservations.date_reserved < ?) OR (reservations.date_reserved = ? AND reservations.id < ?)",
			cursor.Timestamp, cursor.Timestamp, cursor.ID,
		)
	}

	qb = qb.Order("reservations.date_reserved DESC").Order("reservations.id DESC").Limit(limitWithBuffer)

	var rows []models.Reservation
	if err := qb.Scan(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.DateReserved, ID: last.ID})
	}
	return rows, nextCursor, nil
}
