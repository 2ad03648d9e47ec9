package health_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/missio/internal/app/features/health"
	"github.com/dalemusser/missio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func serve(t *testing.T, h *health.Handler) (int, healthBody) {
	t.Helper()
	rec := testutil.NewRecorder()
	health.Routes(h).ServeHTTP(rec, testutil.NewRequest("GET", "/"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body healthBody
	rec.DecodeJSON(t, &body)
	return rec.Code, body
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)

	code, body := serve(t, health.NewHandler(db.Client(), zap.NewNop()))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"database": "ok"}, body.Checks)
}

func TestServe_DatabaseDisconnected(t *testing.T) {
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	require.NoError(t, client.Disconnect(ctx))

	code, body := serve(t, health.NewHandler(client, zap.NewNop()))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "unavailable", body.Checks["database"])
}

func TestServe_AnyFailingCheck(t *testing.T) {
	h := &health.Handler{
		Checks: []health.Check{
			{Name: "a", Probe: func(context.Context) error { return nil }},
			{Name: "b", Probe: func(context.Context) error { return errors.New("down") }},
		},
		Log: zap.NewNop(),
	}

	code, body := serve(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, map[string]string{"a": "ok", "b": "unavailable"}, body.Checks)
}
