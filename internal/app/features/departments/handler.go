// internal/app/features/departments/handler.go
package departments

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/store/audit"
	departmentstore "github.com/dalemusser/missio/internal/app/store/departments"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Handler struct {
	Store    *departmentstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger) *Handler {
	return &Handler{
		Store:    departmentstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

// ServeList handles GET /api/departments.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "list departments", err)
		return
	}
	respond.OK(w, list)
}

type createInput struct {
	Name string `json:"name" validate:"notblank" label:"Name"`
}

// HandleCreate handles POST /api/departments.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "create department: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "create department: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Store.Add(ctx, in.Name)
	if err != nil {
		h.ErrLog.Write(w, r, "create department", err)
		return
	}
	h.audit(ctx, r, audit.EventDepartmentCreated, d.ID, d.Name)

	respond.JSON(w, http.StatusCreated, d)
}

// HandleDelete handles DELETE /api/departments/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "delete department", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.Write(w, r, "delete department", err)
		return
	}
	h.audit(ctx, r, audit.EventDepartmentDeleted, id, "")

	respond.NoContent(w)
}

func (h *Handler) audit(ctx context.Context, r *http.Request, eventType string, id primitive.ObjectID, name string) {
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, eventType, id, name, "")
}
