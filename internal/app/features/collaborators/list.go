// internal/app/features/collaborators/list.go
package collaborators

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/policy/collaboratorpolicy"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
)

// ServeList handles GET /api/collaborators.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	scope := collaboratorpolicy.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx, scope.Filter())
	if err != nil {
		h.ErrLog.Write(w, r, "list collaborators", err)
		return
	}
	respond.OK(w, list)
}
