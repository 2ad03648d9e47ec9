// internal/app/features/reports/csv.go
package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeMonthlyCSV handles GET /api/reports/monthly.csv: one row per event
// followed by a totals row.
func (h *Handler) ServeMonthlyCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rep, err := h.load(ctx, r)
	if err != nil {
		h.ErrLog.Write(w, r, "monthly report csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="missio-report-%s.csv"`, rep.Month))

	cw := csv.NewWriter(w)
	_ = cw.Write(eventHeaders)
	for _, e := range rep.Events {
		_ = cw.Write([]string{
			e.When.In(h.Loc).Format("2006-01-02 15:04"),
			e.What,
			e.Why,
			e.Where,
			e.Congregation,
			e.Who,
			strconv.Itoa(e.Result.ApproachedCount),
			strconv.Itoa(e.Result.CollaboratorCount),
			strconv.Itoa(e.Result.DecisionsCount),
			strconv.Itoa(len(e.Result.Contacts)),
			e.Result.Notes,
		})
	}
	t := rep.Totals
	_ = cw.Write([]string{
		"Total", strconv.Itoa(t.Events) + " events", "", "", "", "",
		strconv.Itoa(t.Approached), strconv.Itoa(t.Collaborators), strconv.Itoa(t.Decisions), "", "",
	})
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("monthly report csv: write", zap.Error(err))
	}
}
