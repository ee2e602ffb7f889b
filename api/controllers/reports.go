package controllers

import (
	"net/http"
	"time"

	"github.com/cjdworks/stockpos-backend/api/responses"
	"github.com/cjdworks/stockpos-backend/api/validators"
	reportsvc "github.com/cjdworks/stockpos-backend/internal/reports"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
)

const defaultReportWindow = 30 * 24 * time.Hour

// SalesReport aggregates sell and confirm log entries per day. Defaults to
// the last 30 days when no window is given.
func SalesReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		input := reportsvc.ReportInput{}
		if to != nil {
			input.To = *to
		} else {
			input.To = time.Now().UTC()
		}
		if from != nil {
			input.From = *from
		} else {
			input.From = input.To.Add(-defaultReportWindow)
		}

		report, err := svc.SalesReport(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
