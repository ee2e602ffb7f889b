package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
	"github.com/cjdworks/stockpos-backend/pkg/metrics"
)

// Service defines operations that record and read the transaction log.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordEntryInput) (*models.LogEntry, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	DeleteByInventoryID(ctx context.Context, tx *gorm.DB, inventoryID uuid.UUID) error
}

// RecordEntryInput captures the immutable data a log entry requires.
type RecordEntryInput struct {
	InventoryID uuid.UUID
	AccountName string
	ProductName string
	Action      enums.LogAction
	Quantity    int
	PriceEach   decimal.Decimal
	OldStock    int
	NewStock    int
	SalesAmount decimal.Decimal
	TransactBy  string
}

// ListResult is one page of the transaction log.
type ListResult struct {
	Entries    []models.LogEntry
	NextCursor string
}

type service struct {
	repo    Repository
	metrics *metrics.LedgerMetrics
}

// NewService wires a log service with the provided repository.
func NewService(repo Repository, m *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, metrics: m}, nil
}

// Record appends one log entry inside the caller's transaction. A returned
// error must abort that transaction so the action is never applied unlogged.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordEntryInput) (*models.LogEntry, error) {
	if input.InventoryID == uuid.Nil {
		return nil, fmt.Errorf("inventory id is required")
	}
	if !input.Action.IsValid() {
		return nil, fmt.Errorf("invalid log action %q", input.Action)
	}

	entry := &models.LogEntry{
		InventoryID: input.InventoryID,
		AccountName: input.AccountName,
		ProductName: input.ProductName,
		Action:      input.Action,
		Quantity:    input.Quantity,
		PriceEach:   input.PriceEach,
		OldStock:    input.OldStock,
		NewStock:    input.NewStock,
		SalesAmount: input.SalesAmount,
		TransactBy:  input.TransactBy,
	}

	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert log entry")
	}

	s.metrics.IncAction(string(input.Action), input.Quantity)
	return entry, nil
}

// DeleteByInventoryID removes every entry for the item, inside the caller's
// transaction when one is supplied. Only used by the inventory cascade delete.
func (s *service) DeleteByInventoryID(ctx context.Context, tx *gorm.DB, inventoryID uuid.UUID) error {
	if inventoryID == uuid.Nil {
		return fmt.Errorf("inventory id is required")
	}
	if err := s.repo.WithTx(tx).DeleteByInventoryID(ctx, inventoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete log entries")
	}
	return nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	entries, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list log entries")
	}
	return &ListResult{Entries: entries, NextCursor: nextCursor}, nil
}
