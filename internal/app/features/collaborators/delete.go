// internal/app/features/collaborators/delete.go
package collaborators

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/policy/collaboratorpolicy"
	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/collaborators/{id}. A collaborator outside
// the caller's scope answers 404. Event who lists keep the name.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "delete collaborator", err)
		return
	}
	scope := collaboratorpolicy.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id, scope.Filter()); err != nil {
		h.ErrLog.Write(w, r, "delete collaborator", err)
		return
	}
	_, cong, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventCollaboratorDeleted, id, "", cong)
	h.Log.Debug("collaborator deleted", zap.String("collaborator_id", id.Hex()))

	respond.NoContent(w)
}
