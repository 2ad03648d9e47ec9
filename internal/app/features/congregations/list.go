// internal/app/features/congregations/list.go
package congregations

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
)

// ServeList returns every congregation sorted by name.
//
// Route: GET /api/congregations (public; the registration form needs it)
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "list congregations", err)
		return
	}
	respond.OK(w, list)
}
