package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cjdworks/stockpos-backend/api/responses"
	"github.com/cjdworks/stockpos-backend/api/validators"
	invsvc "github.com/cjdworks/stockpos-backend/internal/inventory"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
)

// InventoryRestock handles adding stock, merging into an existing row when
// the account/product pair already exists.
func InventoryRestock(svc invsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Restock(r.Context(), invsvc.RestockInput{
			AccountName: payload.AccountName,
			ProductName: payload.ProductName,
			Quantity:    payload.Quantity,
			PriceEach:   payload.PriceEach,
			InsertedBy:  payload.InsertedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newInventoryItemResponse(item.ID, item.AccountName, item.ProductName,
			invsvc.Availability{Stocks: item.Stocks, SoldStocks: item.SoldStocks},
			item.PriceEach, item.InsertedBy, item.LastUpdated))
	}
}

// InventoryList returns inventory rows with derived availability.
func InventoryList(svc invsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.List(r.Context(), invsvc.ListQuery{
			Pagination: validators.QueryPagination(r),
			Search:     r.URL.Query().Get("search"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]inventoryItemResponse, 0, len(result.Items))
		for _, summary := range result.Items {
			items = append(items, newInventoryItemResponse(
				summary.Item.ID, summary.Item.AccountName, summary.Item.ProductName,
				summary.Availability, summary.Item.PriceEach, summary.Item.InsertedBy, summary.Item.LastUpdated))
		}

		responses.WriteSuccess(w, inventoryListResponse{
			Items:      items,
			NextCursor: result.NextCursor,
		})
	}
}

// InventoryGet returns one item with its open reservations.
func InventoryGet(svc invsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetDetail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pending := make([]pendingReservationResponse, 0, len(detail.Pending))
		for _, res := range detail.Pending {
			pending = append(pending, pendingReservationResponse{
				ID:           res.ID,
				ClientName:   res.ClientName,
				Quantity:     res.Quantity,
				PriceEach:    res.PriceEach,
				DateReserved: res.DateReserved,
				DatePickup:   res.DatePickup,
			})
		}

		responses.WriteSuccess(w, inventoryDetailResponse{
			inventoryItemResponse: newInventoryItemResponse(
				detail.Item.ID, detail.Item.AccountName, detail.Item.ProductName,
				detail.Availability, detail.Item.PriceEach, detail.Item.InsertedBy, detail.Item.LastUpdated),
			Pending: pending,
		})
	}
}

// InventoryUpdate edits item fields in place without logging.
func InventoryUpdate(svc invsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), id, invsvc.UpdateInput{
			AccountName: payload.AccountName,
			ProductName: payload.ProductName,
			PriceEach:   payload.PriceEach,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryItemResponse(item.ID, item.AccountName, item.ProductName,
			invsvc.Availability{Stocks: item.Stocks, SoldStocks: item.SoldStocks},
			item.PriceEach, item.InsertedBy, item.LastUpdated))
	}
}

// InventoryDelete removes the item with its reservations and log entries.
func InventoryDelete(svc invsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type restockRequest struct {
	AccountName string          `json:"account_name" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	PriceEach   decimal.Decimal `json:"price_each"`
	InsertedBy  string          `json:"inserted_by"`
}

type updateInventoryRequest struct {
	AccountName *string          `json:"account_name"`
	ProductName *string          `json:"product_name"`
	PriceEach   *decimal.Decimal `json:"price_each"`
}

type inventoryItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountName string          `json:"account_name"`
	ProductName string          `json:"product_name"`
	Stocks      int             `json:"stocks"`
	SoldStocks  int             `json:"sold_stocks"`
	PendingQty  int             `json:"pending_qty"`
	Available   int             `json:"available"`
	PriceEach   decimal.Decimal `json:"price_each"`
	InsertedBy  string          `json:"inserted_by,omitempty"`
	LastUpdated time.Time       `json:"last_updated"`
}

type inventoryListResponse struct {
	Items      []inventoryItemResponse `json:"items"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

type pendingReservationResponse struct {
	ID           uuid.UUID       `json:"id"`
	ClientName   string          `json:"client_name"`
	Quantity     int             `json:"quantity"`
	PriceEach    decimal.Decimal `json:"price_each"`
	DateReserved time.Time       `json:"date_reserved"`
	DatePickup   *time.Time      `json:"date_pickup,omitempty"`
}

type inventoryDetailResponse struct {
	inventoryItemResponse
	Pending []pendingReservationResponse `json:"pending_reservations"`
}

func newInventoryItemResponse(id uuid.UUID, accountName, productName string, availability invsvc.Availability, priceEach decimal.Decimal, insertedBy string, lastUpdated time.Time) inventoryItemResponse {
	return inventoryItemResponse{
		ID:          id,
		AccountName: accountName,
		ProductName: productName,
		Stocks:      availability.Stocks,
		SoldStocks:  availability.SoldStocks,
		PendingQty:  availability.PendingQty,
		Available:   availability.Stocks - availability.SoldStocks - availability.PendingQty,
		PriceEach:   priceEach,
		InsertedBy:  insertedBy,
		LastUpdated: lastUpdated,
	}
}
