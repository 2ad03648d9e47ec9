// Package health serves the liveness endpoint used by load balancers and
// container orchestrators.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Check is one dependency probe. A non-nil error marks the service unhealthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type Handler struct {
	Checks  []Check
	Started time.Time
	Log     *zap.Logger
}

// NewHandler probes MongoDB with a primary ping.
func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Checks: []Check{{
			Name:  "database",
			Probe: func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		}},
		Started: time.Now(),
		Log:     logger,
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Uptime int64             `json:"uptime_seconds"`
	Checks map[string]string `json:"checks"`
}

// Serve handles GET /health. Every check runs within the ping timeout; the
// answer is 200 {"status":"ok"} when all pass and 503 {"status":"error"}
// otherwise, with each check's outcome under "checks".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status: "ok",
		Uptime: int64(time.Since(h.Started).Seconds()),
		Checks: make(map[string]string, len(h.Checks)),
	}
	for _, c := range h.Checks {
		if err := c.Probe(ctx); err != nil {
			h.Log.Error("health check failed", zap.String("check", c.Name), zap.Error(err))
			resp.Status = "error"
			resp.Checks[c.Name] = "unavailable"
			continue
		}
		resp.Checks[c.Name] = "ok"
	}

	if resp.Status != "ok" {
		respond.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respond.OK(w, resp)
}
