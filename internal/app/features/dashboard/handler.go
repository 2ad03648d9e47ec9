// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/policy/collaboratorpolicy"
	"github.com/dalemusser/missio/internal/app/policy/eventpolicy"
	collaboratorstore "github.com/dalemusser/missio/internal/app/store/collaborators"
	eventstore "github.com/dalemusser/missio/internal/app/store/events"
	"github.com/dalemusser/missio/internal/app/system/aggregation"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events        *eventstore.Store
	Collaborators *collaboratorstore.Store
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:        eventstore.New(db),
		Collaborators: collaboratorstore.New(db),
		ErrLog:        errLog,
		Log:           logger,
	}
}

// ServeDashboard handles GET /api/dashboard.
//
// Query: includeCompleted=1 keeps completed events in the events list. The
// counters always cover every visible event. Listed events carry their full
// fields and contacts, as in GET /api/events.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	includeCompleted := params.Bool(r, "includeCompleted")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events := []models.Event{}
	if filter, ok := eventpolicy.FromRequest(r).Filter(); ok {
		list, err := h.Events.ListWithContacts(ctx, filter)
		if err != nil {
			h.ErrLog.Write(w, r, "dashboard: load events", err)
			return
		}
		events = list
	}

	volunteers, err := h.Collaborators.Count(ctx, collaboratorpolicy.FromRequest(r).Filter())
	if err != nil {
		h.ErrLog.Write(w, r, "dashboard: count collaborators", err)
		return
	}

	respond.OK(w, aggregation.ComputeSummary(events, int(volunteers), includeCompleted, time.Now()))
}
