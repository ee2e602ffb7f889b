package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/internal/changes"
	"github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/pkg/db"
	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
	"github.com/cjdworks/stockpos-backend/pkg/normalize"
)

// Service exposes inventory stock management operations.
type Service interface {
	Restock(ctx context.Context, input RestockInput) (*models.InventoryItem, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*ItemDetail, error)
}

// RestockInput holds the validated payload to add stock.
type RestockInput struct {
	AccountName string
	ProductName string
	Quantity    int
	PriceEach   decimal.Decimal
	InsertedBy  string
}

// UpdateInput holds optional mutation values for an inventory item.
// Edits adjust the row in place and write no log entry.
type UpdateInput struct {
	AccountName *string
	ProductName *string
	PriceEach   *decimal.Decimal
}

// ListResult is one page of inventory rows with availability attached.
type ListResult struct {
	Items      []ItemSummary
	NextCursor string
}

// ItemSummary is an inventory row plus its derived stock position.
type ItemSummary struct {
	Item         models.InventoryItem
	Availability Availability
}

// ItemDetail adds the open reservations holding units on the item.
type ItemDetail struct {
	Item         models.InventoryItem
	Availability Availability
	Pending      []models.Reservation
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	ledger   ledger.Service
	notifier changes.Notifier
}

// NewService constructs an inventory service instance.
func NewService(repo *Repository, dbClient *db.Client, ledgerSvc ledger.Service, notifier changes.Notifier) (Service, error) {
	if repo == nil {
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
		dbClient: dbClient,
		ledger:   ledgerSvc,
		notifier: notifier,
	}, nil
}

// Restock adds stock, merging into the existing row when the normalized
// account/product pair already exists. A nonzero price replaces the stored
// one; zero leaves it untouched.
func (s *service) Restock(ctx context.Context, input RestockInput) (*models.InventoryItem, error) {
	accountKey := normalize.Key(input.AccountName)
	productKey := normalize.Key(input.ProductName)
	if accountKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account_name must contain letters or digits")
	}
	if productKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name must contain letters or digits")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.PriceEach.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_each must be non-negative")
	}

	var result *models.InventoryItem
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		item, err := txRepo.FindByKeys(ctx, accountKey, productKey)
		switch {
		case err == nil:
			oldStock := item.Stocks
			item.Stocks += input.Quantity
			if !input.PriceEach.IsZero() {
				item.PriceEach = input.PriceEach
			}
			if by := strings.TrimSpace(input.InsertedBy); by != "" {
				item.InsertedBy = by
			}
			if err := txRepo.Save(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inventory item")
			}
			if _, err := s.ledger.Record(ctx, tx, ledger.RecordEntryInput{
				InventoryID: item.ID,
				AccountName: item.AccountName,
				ProductName: item.ProductName,
				Action:      enums.LogActionRestock,
				Quantity:    input.Quantity,
				PriceEach:   item.PriceEach,
				OldStock:    oldStock,
				NewStock:    item.Stocks,
				TransactBy:  input.InsertedBy,
			}); err != nil {
				return err
			}
			result = item
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.InventoryItem{
				AccountName: strings.TrimSpace(input.AccountName),
				ProductName: strings.TrimSpace(input.ProductName),
				AccountKey:  accountKey,
				ProductKey:  productKey,
				Stocks:      input.Quantity,
				PriceEach:   input.PriceEach,
				InsertedBy:  strings.TrimSpace(input.InsertedBy),
			}
			if err := txRepo.Create(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory item")
			}
			if _, err := s.ledger.Record(ctx, tx, ledger.RecordEntryInput{
				InventoryID: item.ID,
				AccountName: item.AccountName,
				ProductName: item.ProductName,
				Action:      enums.LogActionRestock,
				Quantity:    input.Quantity,
				PriceEach:   input.PriceEach,
				OldStock:    0,
				NewStock:    item.Stocks,
				TransactBy:  input.InsertedBy,
			}); err != nil {
				return err
			}
			result = item
			return nil

		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup inventory item")
		}
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock")
	}

	s.notifier.Notify(ctx, changes.Event{Entity: changes.EntityInventory, Action: "restock", ID: result.ID})
	return result, nil
}

// Update edits item fields in place. Name changes recompute the normalized
// keys and must not collide with another row.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
	}

	if input.AccountName != nil {
		item.AccountName = strings.TrimSpace(*input.AccountName)
		item.AccountKey = normalize.Key(*input.AccountName)
		if item.AccountKey == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "account_name must contain letters or digits")
		}
	}
	if input.ProductName != nil {
		item.ProductName = strings.TrimSpace(*input.ProductName)
		item.ProductKey = normalize.Key(*input.ProductName)
		if item.ProductKey == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name must contain letters or digits")
		}
	}
	if input.PriceEach != nil {
		if input.PriceEach.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_each must be non-negative")
		}
		item.PriceEach = *input.PriceEach
	}

	if input.AccountName != nil || input.ProductName != nil {
		existing, err := s.repo.FindByKeys(ctx, item.AccountKey, item.ProductKey)
		if err == nil && existing.ID != item.ID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "another item already uses this account/product pair")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check key collision")
		}
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inventory item")
	}

	s.notifier.Notify(ctx, changes.Event{Entity: changes.EntityInventory, Action: "update", ID: item.ID})
	return item, nil
}

// Delete removes the item together with its reservations and log entries.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("inventory_id = ?", id).Delete(&models.Reservation{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete reservations")
		}
		if err := s.ledger.DeleteByInventoryID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory item")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}

	s.notifier.Notify(ctx, changes.Event{Entity: changes.EntityInventory, Action: "delete", ID: id})
	return nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory")
	}

	items := make([]ItemSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, ItemSummary{
			Item:         row.Item,
			Availability: ComputeAvailability(row.Item.Stocks, row.Item.SoldStocks, row.PendingQty),
		})
	}
	return &ListResult{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*ItemDetail, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
	}

	pending, err := s.repo.PendingReservations(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load pending reservations")
	}

	pendingQty := 0
	for _, res := range pending {
		pendingQty += res.Quantity
	}

	return &ItemDetail{
		Item:         *item,
		Availability: ComputeAvailability(item.Stocks, item.SoldStocks, pendingQty),
		Pending:      pending,
	}, nil
}
