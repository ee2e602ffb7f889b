package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	salessvc "github.com/cjdworks/stockpos-backend/internal/sales"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
)

type stubSalesService struct {
	sellFn func(ctx context.Context, input salessvc.SellInput) (*salessvc.Receipt, error)
}

func (s stubSalesService) Sell(ctx context.Context, input salessvc.SellInput) (*salessvc.Receipt, error) {
	if s.sellFn != nil {
		return s.sellFn(ctx, input)
	}
	panic("unimplemented")
}

func TestTransactionSellSuccess(t *testing.T) {
	inventoryID := uuid.New()
	receipt := &salessvc.Receipt{
		Lines: []salessvc.ReceiptLine{{
			InventoryID: inventoryID,
			AccountName: "Acme",
			ProductName: "Widget",
			Quantity:    2,
			PriceEach:   decimal.RequireFromString("4.00"),
			Amount:      decimal.RequireFromString("8.00"),
		}},
		Total:  decimal.RequireFromString("8.00"),
		SoldAt: time.Now().UTC(),
	}
	handler := TransactionSell(stubSalesService{
		sellFn: func(_ context.Context, input salessvc.SellInput) (*salessvc.Receipt, error) {
			if len(input.Lines) != 1 || input.Lines[0].Quantity != 2 {
				t.Fatalf("unexpected input %+v", input)
			}
			return receipt, nil
		},
	}, nil)

	body := `{"items":[{"inventory_id":"` + inventoryID.String() + `","quantity":2}],"transact_by":"maria"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/sell", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			ReceiptText string `json:"receipt_text"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(envelope.Data.ReceiptText, "TOTAL: 8.00") {
		t.Fatalf("receipt text missing total: %q", envelope.Data.ReceiptText)
	}
}

func TestTransactionSellOutOfStock(t *testing.T) {
	handler := TransactionSell(stubSalesService{
		sellFn: func(context.Context, salessvc.SellInput) (*salessvc.Receipt, error) {
			return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "only 2 left").
				WithDetails(map[string]any{"available": 2})
		},
	}, nil)

	body := `{"items":[{"inventory_id":"` + uuid.NewString() + `","quantity":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/sell", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected code %s got %s", pkgerrors.CodeOutOfStock, payload.Error.Code)
	}
}

func TestTransactionSellEmptyCart(t *testing.T) {
	handler := TransactionSell(stubSalesService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/sell", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
