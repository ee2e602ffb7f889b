package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cjdworks/stockpos-backend/internal/ledger"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
)

// Service exposes sales reporting over the transaction log.
type Service interface {
	SalesReport(ctx context.Context, input ReportInput) (*SalesReport, error)
}

// ReportInput bounds the reporting window. To is exclusive.
type ReportInput struct {
	From time.Time
	To   time.Time
}

// DayRow aggregates one calendar day of sales.
type DayRow struct {
	Date   string          `json:"date"`
	Units  int             `json:"units"`
	Amount decimal.Decimal `json:"amount"`
}

// SalesReport sums direct sells and confirmed reservations per day.
type SalesReport struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Days       []DayRow        `json:"days"`
	TotalUnits int             `json:"total_units"`
	Total      decimal.Decimal `json:"total"`
}

type service struct {
	repo ledger.Repository
}

// NewService constructs a reports service over the log repository.
func NewService(repo ledger.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// SalesReport groups sell and confirm entries by calendar day (UTC) and
// totals units and amounts.
func (s *service) SalesReport(ctx context.Context, input ReportInput) (*SalesReport, error) {
	if input.From.IsZero() || input.To.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	if !input.To.After(input.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}

	entries, err := s.repo.ListSalesBetween(ctx, input.From, input.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sales entries")
	}

	byDay := make(map[string]*DayRow)
	report := &SalesReport{
		From:  input.From,
		To:    input.To,
		Total: decimal.Zero,
	}

	for _, entry := range entries {
		day := entry.Timestamp.UTC().Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &DayRow{Date: day, Amount: decimal.Zero}
			byDay[day] = row
		}
		row.Units += entry.Quantity
		row.Amount = row.Amount.Add(entry.SalesAmount)

		report.TotalUnits += entry.Quantity
		report.Total = report.Total.Add(entry.SalesAmount)
	}

	days := make([]DayRow, 0, len(byDay))
	for _, row := range byDay {
		days = append(days, *row)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	report.Days = days

	return report, nil
}
