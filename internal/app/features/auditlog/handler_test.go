package auditlog_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/missio/internal/app/features/auditlog"
	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type listBody struct {
	Events []auditlog.EventView `json:"events"`
	Total  int64                `json:"total"`
	Limit  int64                `json:"limit"`
}

func setup(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	require.NoError(t, err)

	h := auditlog.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
	return auditlog.Routes(h, sm), testutil.NewFixtures(t, db)
}

func TestServeList_FiltersAndResolvesEmails(t *testing.T) {
	r, f := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "root@example.com")
	member := f.CreatePending(ctx, "bia@example.com", "B")

	store := audit.New(f.DB())
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserStatusChanged,
		UserID:    &member.ID,
		ActorID:   &admin.ID,
		Success:   true,
		Details:   map[string]string{"from": "pending", "to": "approved"},
		Timestamp: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &member.ID,
		Success:   true,
		Timestamp: time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC),
	}))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/?category=admin", testutil.FromProfile(admin)))
	rec.AssertStatus(t, http.StatusOK)

	var got listBody
	rec.DecodeJSON(t, &got)
	assert.EqualValues(t, 1, got.Total)
	require.Len(t, got.Events, 1)
	e := got.Events[0]
	assert.Equal(t, audit.EventUserStatusChanged, e.EventType)
	assert.Equal(t, "bia@example.com", e.UserEmail)
	assert.Equal(t, "root@example.com", e.ActorEmail)
	assert.Equal(t, "approved", e.Details["to"])

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/?user_id="+member.ID.Hex()+"&end_date=2024-05-02", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	got = listBody{}
	rec.DecodeJSON(t, &got)
	assert.EqualValues(t, 1, got.Total, "end_date includes the whole day and nothing after")
}

func TestServeList_NewestFirstWithLimit(t *testing.T) {
	r, f := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(f.DB())
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			Success:   true,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/?limit=2", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got listBody
	rec.DecodeJSON(t, &got)
	assert.EqualValues(t, 3, got.Total)
	assert.EqualValues(t, 2, got.Limit)
	require.Len(t, got.Events, 2)
	assert.True(t, got.Events[0].Timestamp.After(got.Events[1].Timestamp))
}

func TestServeList_BadParams(t *testing.T) {
	r, _ := setup(t)

	for _, q := range []string{"?category=billing", "?user_id=nope", "?subject_id=zz", "?start_date=May", "?limit=0", "?offset=-1"} {
		rec := testutil.NewRecorder()
		r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/"+q, testutil.AdminUser()))
		rec.AssertStatus(t, http.StatusBadRequest)
	}
}

func TestServeList_MemberForbidden(t *testing.T) {
	r, _ := setup(t)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.MemberUser("A")))
	rec.AssertStatus(t, http.StatusForbidden)
}
