package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
)

func viewOf(p models.Profile) UserView {
	return UserView{
		ID:           p.ID.Hex(),
		Email:        p.Email,
		Role:         p.Role,
		Status:       p.Status,
		Approved:     p.IsApproved(),
		Congregation: p.Congregation,
		CreatedAt:    p.CreatedAt,
		LastSignInAt: p.LastSignInAt,
	}
}

func viewsOf(list []models.Profile) []UserView {
	out := make([]UserView, 0, len(list))
	for _, p := range list {
		out = append(out, viewOf(p))
	}
	return out
}

// ServeList handles GET /api/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Profiles.List(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "users: list", err)
		return
	}
	respond.OK(w, viewsOf(list))
}

// ServePending handles GET /api/users/pending.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Profiles.ListPending(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "users: list pending", err)
		return
	}
	respond.OK(w, viewsOf(list))
}

type pendingCountResponse struct {
	Count int64 `json:"count"`
}

// ServePendingCount handles GET /api/users/pending-count.
func (h *Handler) ServePendingCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.pendingCount(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "users: pending count", err)
		return
	}
	respond.OK(w, pendingCountResponse{Count: n})
}
