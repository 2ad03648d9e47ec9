// internal/app/features/reports/monthly.go
package reports

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/missio/internal/app/policy/reportpolicy"
	"github.com/dalemusser/missio/internal/app/system/aggregation"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
)

// load builds the report for ?month=YYYY-MM (blank means the current month)
// within the caller's scope.
func (h *Handler) load(ctx context.Context, r *http.Request) (aggregation.MonthlyReport, error) {
	month, err := aggregation.ParseMonth(r.URL.Query().Get("month"), time.Now(), h.Loc)
	if err != nil {
		return aggregation.MonthlyReport{}, err
	}
	start, end := month.Bounds()

	filter, ok := reportpolicy.CanViewMonthlyReport(r).MonthFilter(start, end)
	if !ok {
		return aggregation.ComputeMonthlyReport(nil, month), nil
	}
	events, err := h.Events.ListWithContacts(ctx, filter)
	if err != nil {
		return aggregation.MonthlyReport{}, err
	}
	return aggregation.ComputeMonthlyReport(events, month), nil
}

// ServeMonthly handles GET /api/reports/monthly.
func (h *Handler) ServeMonthly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rep, err := h.load(ctx, r)
	if err != nil {
		h.ErrLog.Write(w, r, "monthly report", err)
		return
	}
	respond.OK(w, rep)
}
