// internal/app/features/indicators/handler.go
package indicators

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	"github.com/dalemusser/missio/internal/app/policy/reportpolicy"
	collaboratorstore "github.com/dalemusser/missio/internal/app/store/collaborators"
	congregationstore "github.com/dalemusser/missio/internal/app/store/congregations"
	eventstore "github.com/dalemusser/missio/internal/app/store/events"
	"github.com/dalemusser/missio/internal/app/system/aggregation"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events        *eventstore.Store
	Collaborators *collaboratorstore.Store
	Congregations *congregationstore.Store
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger

	// Now is swapped in tests.
	Now func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:        eventstore.New(db),
		Collaborators: collaboratorstore.New(db),
		Congregations: congregationstore.New(db),
		ErrLog:        errLog,
		Log:           logger,
		Now:           time.Now,
	}
}

// ServeIndicators handles GET /api/indicators?period=all|year|quarter|month.
// Rankings are computed across every congregation.
func (h *Handler) ServeIndicators(w http.ResponseWriter, r *http.Request) {
	if !reportpolicy.CanViewIndicators(r) {
		h.ErrLog.Write(w, r, "indicators", apperr.Denied("view indicators"))
		return
	}

	period, err := aggregation.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.ErrLog.Write(w, r, "indicators: parse period", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	events, err := h.Events.ListForStats(ctx, bson.M{})
	if err != nil {
		h.ErrLog.Write(w, r, "indicators: load events", err)
		return
	}
	collabs, err := h.Collaborators.List(ctx, bson.M{})
	if err != nil {
		h.ErrLog.Write(w, r, "indicators: load collaborators", err)
		return
	}
	congs, err := h.Congregations.List(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "indicators: load congregations", err)
		return
	}

	respond.OK(w, aggregation.ComputePerformance(events, collabs, congs, period, h.Now()))
}
