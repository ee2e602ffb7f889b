package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cjdworks/stockpos-backend/api/responses"
	"github.com/cjdworks/stockpos-backend/api/validators"
	ledgersvc "github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
)

// LogsList pages through the transaction log, newest first.
func LogsList(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.QueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.QueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), ledgersvc.ListQuery{
			Pagination: validators.QueryPagination(r),
			Search:     r.URL.Query().Get("search"),
			From:       from,
			To:         to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries := make([]logEntryResponse, 0, len(result.Entries))
		for i := range result.Entries {
			entries = append(entries, newLogEntryResponse(&result.Entries[i]))
		}

		responses.WriteSuccess(w, logListResponse{
			Entries:    entries,
			NextCursor: result.NextCursor,
		})
	}
}

type logEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	InventoryID uuid.UUID       `json:"inventory_id"`
	Timestamp   time.Time       `json:"timestamp"`
	AccountName string          `json:"account_name"`
	ProductName string          `json:"product_name"`
	Action      string          `json:"action"`
	Quantity    int             `json:"quantity"`
	PriceEach   decimal.Decimal `json:"price_each"`
	OldStock    int             `json:"old_stock"`
	NewStock    int             `json:"new_stock"`
	SalesAmount decimal.Decimal `json:"sales_amount"`
	TransactBy  string          `json:"transact_by,omitempty"`
}

type logListResponse struct {
	Entries    []logEntryResponse `json:"entries"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

func newLogEntryResponse(entry *models.LogEntry) logEntryResponse {
	return logEntryResponse{
		ID:          entry.ID,
		InventoryID: entry.InventoryID,
		Timestamp:   entry.Timestamp,
		AccountName: entry.AccountName,
		ProductName: entry.ProductName,
		Action:      string(entry.Action),
		Quantity:    entry.Quantity,
		PriceEach:   entry.PriceEach,
		OldStock:    entry.OldStock,
		NewStock:    entry.NewStock,
		SalesAmount: entry.SalesAmount,
		TransactBy:  entry.TransactBy,
	}
}
