package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cjdworks/stockpos-backend/api/responses"
	"github.com/cjdworks/stockpos-backend/api/validators"
	ressvc "github.com/cjdworks/stockpos-backend/internal/reservations"
	"github.com/cjdworks/stockpos-backend/pkg/db/models"
	"github.com/cjdworks/stockpos-backend/pkg/enums"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
)

// ReservationCreate places a pending hold on an inventory item.
func ReservationCreate(svc ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createReservationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Reserve(r.Context(), ressvc.ReserveInput{
			InventoryID: payload.InventoryID,
			ClientName:  payload.ClientName,
			Quantity:    payload.Quantity,
			DatePickup:  payload.DatePickup,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newReservationResponse(reservation))
	}
}

// ReservationConfirm turns a pending reservation into a sale.
func ReservationConfirm(svc ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc.Confirm, logg)
}

// ReservationCancel releases a pending reservation.
func ReservationCancel(svc ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc.Cancel, logg)
}

func transition(apply func(ctx context.Context, id uuid.UUID) (*models.Reservation, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := apply(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReservationResponse(reservation))
	}
}

// ReservationList pages through reservations, optionally filtered by status.
func ReservationList(svc ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := ressvc.ListQuery{
			Pagination: validators.QueryPagination(r),
			Search:     r.URL.Query().Get("search"),
		}

		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseReservationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			query.Status = &status
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]reservationResponse, 0, len(result.Reservations))
		for i := range result.Reservations {
			rows = append(rows, newReservationResponse(&result.Reservations[i]))
		}

		responses.WriteSuccess(w, reservationListResponse{
			Reservations: rows,
			NextCursor:   result.NextCursor,
		})
	}
}

type createReservationRequest struct {
	InventoryID uuid.UUID  `json:"inventory_id" validate:"required"`
	ClientName  string     `json:"client_name" validate:"required"`
	Quantity    int        `json:"quantity" validate:"required,min=1"`
	DatePickup  *time.Time `json:"date_pickup"`
}

type reservationResponse struct {
	ID           uuid.UUID       `json:"id"`
	InventoryID  uuid.UUID       `json:"inventory_id"`
	ClientName   string          `json:"client_name"`
	Quantity     int             `json:"quantity"`
	Status       string          `json:"status"`
	PriceEach    decimal.Decimal `json:"price_each"`
	DateReserved time.Time       `json:"date_reserved"`
	DatePickup   *time.Time      `json:"date_pickup,omitempty"`
}

type reservationListResponse struct {
	Reservations []reservationResponse `json:"reservations"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

func newReservationResponse(reservation *models.Reservation) reservationResponse {
	return reservationResponse{
		ID:           reservation.ID,
		InventoryID:  reservation.InventoryID,
		ClientName:   reservation.ClientName,
		Quantity:     reservation.Quantity,
		Status:       string(reservation.Status),
		PriceEach:    reservation.PriceEach,
		DateReserved: reservation.DateReserved,
		DatePickup:   reservation.DatePickup,
	}
}
