package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cjdworks/stockpos-backend/api/responses"
	"github.com/cjdworks/stockpos-backend/api/validators"
	salessvc "github.com/cjdworks/stockpos-backend/internal/sales"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
)

// TransactionSell applies a direct sale cart atomically and returns the
// receipt. A single short line fails the whole cart with OUT_OF_STOCK.
func TransactionSell(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload sellRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]salessvc.SellLine, len(payload.Items))
		for i, item := range payload.Items {
			lines[i] = salessvc.SellLine{
				InventoryID: item.InventoryID,
				Quantity:    item.Quantity,
			}
		}

		receipt, err := svc.Sell(r.Context(), salessvc.SellInput{
			Lines:      lines,
			TransactBy: payload.TransactBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sellResponse{
			Receipt:     receipt,
			ReceiptText: receipt.Text(),
		})
	}
}

type sellRequest struct {
	Items      []sellItemPayload `json:"items" validate:"required,min=1,dive"`
	TransactBy string            `json:"transact_by"`
}

type sellItemPayload struct {
	InventoryID uuid.UUID `json:"inventory_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,min=1"`
}

type sellResponse struct {
	Receipt     *salessvc.Receipt `json:"receipt"`
	ReceiptText string            `json:"receipt_text"`
}
