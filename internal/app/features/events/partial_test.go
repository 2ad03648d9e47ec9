package events_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	"github.com/dalemusser/missio/internal/app/features/events"
	"github.com/dalemusser/missio/internal/app/store/audit"
	eventstore "github.com/dalemusser/missio/internal/app/store/events"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/app/system/metrics"
	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/dalemusser/missio/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type brokenContacts struct{}

func (brokenContacts) DeleteMany(context.Context, interface{}, ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return nil, errors.New("connection reset by peer")
}

// setupBrokenCleanup wires the handler to a store whose contact cleanup
// always fails, with admin audit entries going to the database.
func setupBrokenCleanup(t *testing.T) (http.Handler, *testutil.Fixtures, *mongo.Database, *audit.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	audits := audit.New(db)
	h := events.NewHandler(db, time.UTC, uierrors.NewErrorLogger(logger),
		auditlog.New(audits, logger, auditlog.Config{Auth: "off", Admin: "db"}), logger)
	h.Store = eventstore.New(db, eventstore.Sequential(), eventstore.WithContactRemover(brokenContacts{}))
	return events.Routes(h, sm), testutil.NewFixtures(t, db), db, audits
}

func TestHandleAttachResult_PartialCompletion(t *testing.T) {
	r, fixtures, db, audits := setupBrokenCleanup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e := fixtures.CreateEvent(ctx, "Street fair", "A", testutil.Now())
	if _, err := eventstore.New(db).AttachResult(ctx, e.ID, models.EventResult{
		Contacts: []models.Contact{{Name: "Ana"}, {Name: "Bia"}},
	}, bson.M{}); err != nil {
		t.Fatalf("seeding the first result failed: %v", err)
	}
	partialBefore := promtestutil.ToFloat64(metrics.ResultsAttachedTotal.WithLabelValues(metrics.ResultPartial))

	member := testutil.MemberUser("A")
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/"+e.ID.Hex()+"/result", map[string]any{
		"approachedCount": 12,
		"decisionsCount":  1,
		"contacts":        []map[string]string{{"name": "Caio"}},
	}, member))

	rec.AssertStatus(t, http.StatusInternalServerError)
	var body uierrors.Body
	rec.DecodeJSON(t, &body)
	if !body.Partial || body.Error != uierrors.CodePartial || body.Failed != eventstore.StepDeleteContacts {
		t.Errorf("unexpected error body: %+v", body)
	}

	if got := promtestutil.ToFloat64(metrics.ResultsAttachedTotal.WithLabelValues(metrics.ResultPartial)); got != partialBefore+1 {
		t.Errorf("partial outcomes: got %v, want %v", got, partialBefore+1)
	}

	incomplete, err := audits.Query(ctx, audit.QueryFilter{EventType: audit.EventEventResultIncomplete, SubjectID: &e.ID})
	if err != nil {
		t.Fatalf("audit query failed: %v", err)
	}
	if len(incomplete) != 1 || incomplete[0].FailureReason != eventstore.StepDeleteContacts {
		t.Errorf("expected one incomplete-result audit entry, got %+v", incomplete)
	}

	// The event is completed and reads show only the new contacts.
	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/"+e.ID.Hex(), member))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Event
	rec.DecodeJSON(t, &got)
	if got.Status != models.EventCompleted || got.Result == nil || got.Result.ApproachedCount != 12 {
		t.Fatalf("expected the completed event, got %+v", got)
	}
	if len(got.Result.Contacts) != 1 || got.Result.Contacts[0].Name != "Caio" {
		t.Errorf("expected only the new contacts, got %+v", got.Result.Contacts)
	}
}

func TestHandleDelete_PartialCompletion(t *testing.T) {
	r, fixtures, _, audits := setupBrokenCleanup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e := fixtures.CreateEvent(ctx, "Street fair", "A", testutil.Now())
	member := testutil.MemberUser("A")

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("DELETE", "/"+e.ID.Hex(), member))
	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, `"partial":true`)
	rec.AssertContains(t, `"failed":"delete previous contacts"`)

	n, err := audits.Count(ctx, audit.QueryFilter{EventType: audit.EventEventDeleted, SubjectID: &e.ID})
	if err != nil {
		t.Fatalf("audit count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected the deletion to be audited, got %d entries", n)
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/"+e.ID.Hex(), member))
	rec.AssertStatus(t, http.StatusNotFound)
}
