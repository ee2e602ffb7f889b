package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/internal/changes"
	"github.com/cjdworks/stockpos-backend/internal/inventory"
	"github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/pkg/db"
	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
)

// Service exposes the reservation lifecycle.
type Service interface {
	Reserve(ctx context.Context, input ReserveInput) (*models.Reservation, error)
	Confirm(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

// ReserveInput holds the validated payload to hold units for a client.
type ReserveInput struct {
	InventoryID uuid.UUID
	ClientName  string
	Quantity    int
	DatePickup  *time.Time
}

// ListResult is one page of reservations.
type ListResult struct {
	Reservations []models.Reservation
	NextCursor   string
}

type service struct {
	repo     *Repository
	invRepo  *inventory.Repository
	dbClient *db.Client
	ledger   ledger.Service
	notifier changes.Notifier
}

// NewService constructs a reservation service instance.
func NewService(repo *Repository, invRepo *inventory.Repository, dbClient *db.Client, ledgerSvc ledger.Service, notifier changes.Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if invRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if notifier == nil {
		notifier = changes.NoopNotifier{}
	}
	return &service{
		repo:     repo,
		invRepo:  invRepo,
		dbClient: dbClient,
		ledger:   ledgerSvc,
		notifier: notifier,
	}, nil
}

// Reserve creates a pending hold and copies the item's current price onto it
// so later price edits do not change what the client owes.
func (s *service) Reserve(ctx context.Context, input ReserveInput) (*models.Reservation, error) {
	if input.InventoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory_id is required")
	}
	clientName := strings.TrimSpace(input.ClientName)
	if clientName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_name is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *models.Reservation
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := s.invRepo.WithTx(tx).FindByID(ctx, input.InventoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
		}

		reservation := &models.Reservation{
			InventoryID: item.ID,
			ClientName:  clientName,
			Quantity:    input.Quantity,
			Status:      enums.ReservationStatusPending,
			PriceEach:   item.PriceEach,
			DatePickup:  input.DatePickup,
		}
		if err := s.repo.WithTx(tx).Create(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert reservation")
		}

		remaining := item.Stocks - item.SoldStocks
		if _, err := s.ledger.Record(ctx, tx, ledger.RecordEntryInput{
			InventoryID: item.ID,
			AccountName: item.AccountName,
			ProductName: item.ProductName,
			Action:      enums.LogActionReserve,
			Quantity:    input.Quantity,
			PriceEach:   item.PriceEach,
			OldStock:    remaining,
			NewStock:    remaining,
			TransactBy:  clientName,
		}); err != nil {
			return err
		}

		result = reservation
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve")
	}

	s.notifier.Notify(ctx, changes.Event{Entity: changes.EntityReservation, Action: "reserve", ID: result.ID})
	return result, nil
}

// Confirm turns a pending hold into a sale. The held units were already
// counted against availability, so sold_stocks moves without a stock guard.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var result *models.Reservation
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.UpdateStatusIfPending(ctx, id, enums.ReservationStatusConfirmed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: confirm reservation")
		}
		if rows == 0 {
			return s.explainMissedTransition(ctx, tx, id, enums.ReservationStatusConfirmed)
		}

		reservation, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload reservation")
		}

		txInv := s.invRepo.WithTx(tx)
		if err := txInv.AddSold(ctx, reservation.InventoryID, reservation.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: apply confirmed sale")
		}

		item, err := txInv.FindByID(ctx, reservation.InventoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload inventory item")
		}

		newRemaining := item.Stocks - item.SoldStocks
		if _, err := s.ledger.Record(ctx, tx, ledger.RecordEntryInput{
			InventoryID: item.ID,
			AccountName: item.AccountName,
			ProductName: item.ProductName,
			Action:      enums.LogActionConfirm,
			Quantity:    reservation.Quantity,
			PriceEach:   reservation.PriceEach,
			OldStock:    newRemaining + reservation.Quantity,
			NewStock:    newRemaining,
			SalesAmount: reservation.PriceEach.Mul(decimal.NewFromInt(int64(reservation.Quantity))),
			TransactBy:  reservation.ClientName,
		}); err != nil {
			return err
		}

		result = reservation
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm reservation")
	}

	s.notifier.Notify(ctx, changes.Event{Entity: changes.EntityReservation, Action: "confirm", ID: result.ID})
	return result, nil
}

// Cancel releases a pending hold back to availability.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var result *models.Reservation
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.UpdateStatusIfPending(ctx, id, enums.ReservationStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel reservation")
		}
		if rows == 0 {
			return s.explainMissedTransition(ctx, tx, id, enums.ReservationStatusCancelled)
		}

		reservation, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload reservation")
		}

		item, err := s.invRepo.WithTx(tx).FindByID(ctx, reservation.InventoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload inventory item")
		}

		remaining := item.Stocks - item.SoldStocks
		if _, err := s.ledger.Record(ctx, tx, ledger.RecordEntryInput{
			InventoryID: item.ID,
			AccountName: item.AccountName,
			ProductName: item.ProductName,
			Action:      enums.LogActionCancel,
			Quantity:    reservation.Quantity,
			PriceEach:   reservation.PriceEach,
			OldStock:    remaining,
			NewStock:    remaining,
			TransactBy:  reservation.ClientName,
		}); err != nil {
			return err
		}

		result = reservation
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel reservation")
	}

	s.notifier.Notify(ctx, changes.Event{Entity: changes.EntityReservation, Action: "cancel", ID: result.ID})
	return result, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reservations")
	}
	return &ListResult{Reservations: rows, NextCursor: nextCursor}, nil
}

// explainMissedTransition distinguishes a missing reservation from one that
// already reached a terminal state.
func (s *service) explainMissedTransition(ctx context.Context, tx *gorm.DB, id uuid.UUID, target enums.ReservationStatus) error {
	reservation, err := s.repo.WithTx(tx).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload reservation")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move reservation from %s to %s", reservation.Status, target)).
		WithDetails(map[string]any{"status": reservation.Status})
}
