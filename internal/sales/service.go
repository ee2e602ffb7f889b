package sales

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
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
)

// Service exposes direct point-of-sale transactions.
type Service interface {
	Sell(ctx context.Context, input SellInput) (*Receipt, error)
}

// SellLine is one cart entry in a direct sale.
type SellLine struct {
	InventoryID uuid.UUID
	Quantity    int
}

// SellInput holds the validated cart for a direct sale.
type SellInput struct {
	Lines      []SellLine
	TransactBy string
}

// ReceiptLine is one sold item on a receipt.
type ReceiptLine struct {
	InventoryID uuid.UUID       `json:"inventory_id"`
	AccountName string          `json:"account_name"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceEach   decimal.Decimal `json:"price_each"`
	Amount      decimal.Decimal `json:"amount"`
}

// Receipt summarizes a completed sale.
type Receipt struct {
	Lines      []ReceiptLine   `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	TransactBy string          `json:"transact_by"`
	SoldAt     time.Time       `json:"sold_at"`
}

type service struct {
	invRepo  *inventory.Repository
	dbClient *db.Client
	ledger   ledger.Service
	notifier changes.Notifier
}

// NewService constructs a sales service instance.
func NewService(invRepo *inventory.Repository, dbClient *db.Client, ledgerSvc ledger.Service, notifier changes.Notifier) (Service, error) {
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
		invRepo:  invRepo,
		dbClient: dbClient,
		ledger:   ledgerSvc,
		notifier: notifier,
	}, nil
}

// Sell applies the whole cart atomically. Each line moves sold_stocks only
// when enough unreserved stock remains; one short line rolls everything back.
func (s *service) Sell(ctx context.Context, input SellInput) (*Receipt, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cart line is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if line.InventoryID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory_id is required on every line")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive on every line")
		}
		if _, ok := seen[line.InventoryID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate inventory_id in cart")
		}
		seen[line.InventoryID] = struct{}{}
	}

	transactBy := strings.TrimSpace(input.TransactBy)
	receipt := &Receipt{
		Lines:      make([]ReceiptLine, 0, len(input.Lines)),
		Total:      decimal.Zero,
		TransactBy: transactBy,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txInv := s.invRepo.WithTx(tx)

		for _, line := range input.Lines {
			rows, err := txInv.ApplySale(ctx, line.InventoryID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: apply sale")
			}
			if rows == 0 {
				return s.explainRejectedLine(ctx, txInv, line)
			}

			item, err := txInv.FindByID(ctx, line.InventoryID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload inventory item")
			}

			amount := item.PriceEach.Mul(decimal.NewFromInt(int64(line.Quantity)))
			newRemaining := item.Stocks - item.SoldStocks
			if _, err := s.ledger.Record(ctx, tx, ledger.RecordEntryInput{
				InventoryID: item.ID,
				AccountName: item.AccountName,
				ProductName: item.ProductName,
				Action:      enums.LogActionSell,
				Quantity:    line.Quantity,
				PriceEach:   item.PriceEach,
				OldStock:    newRemaining + line.Quantity,
				NewStock:    newRemaining,
				SalesAmount: amount,
				TransactBy:  transactBy,
			}); err != nil {
				return err
			}

			receipt.Lines = append(receipt.Lines, ReceiptLine{
				InventoryID: item.ID,
				AccountName: item.AccountName,
				ProductName: item.ProductName,
				Quantity:    line.Quantity,
				PriceEach:   item.PriceEach,
				Amount:      amount,
			})
			receipt.Total = receipt.Total.Add(amount)
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sell")
	}

	receipt.SoldAt = time.Now().UTC()
	for _, line := range receipt.Lines {
		s.notifier.Notify(ctx, changes.Event{Entity: changes.EntityInventory, Action: "sell", ID: line.InventoryID})
	}
	return receipt, nil
}

// explainRejectedLine reports why the guarded update matched nothing: the
// item is gone, or pending holds left too little stock.
func (s *service) explainRejectedLine(ctx context.Context, txInv *inventory.Repository, line SellLine) error {
	item, err := txInv.FindByID(ctx, line.InventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload inventory item")
	}

	pendingQty, err := txInv.PendingQuantity(ctx, line.InventoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum pending reservations")
	}

	availability := inventory.ComputeAvailability(item.Stocks, item.SoldStocks, pendingQty)
	return pkgerrors.New(pkgerrors.CodeOutOfStock,
		fmt.Sprintf("only %d of %q available for %q", availability.Available, item.ProductName, item.AccountName)).
		WithDetails(map[string]any{
			"inventory_id": item.ID,
			"requested":    line.Quantity,
			"available":    availability.Available,
			"pending_qty":  availability.PendingQty,
		})
}
