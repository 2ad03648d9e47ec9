package departments_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/missio/internal/app/features/departments"
	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/dalemusser/missio/internal/testutil"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return departments.Routes(departments.NewHandler(db, uierrors.NewErrorLogger(logger), nil), sm)
}

func TestDepartments_CreateListDelete(t *testing.T) {
	r := newRouter(t)
	admin := testutil.AdminUser()

	for _, name := range []string{"Youth", "music"} {
		rec := testutil.NewRecorder()
		r.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/", map[string]string{"name": name}, admin))
		rec.AssertStatus(t, http.StatusCreated)
	}

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.MemberUser("Central")))
	rec.AssertStatus(t, http.StatusOK)

	var list []models.Department
	rec.DecodeJSON(t, &list)
	if len(list) != 2 || list[0].Name != "music" || list[1].Name != "Youth" {
		t.Fatalf("unexpected list: %+v", list)
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("DELETE", "/"+list[0].ID.Hex(), admin))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("DELETE", "/"+list[0].ID.Hex(), admin))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestDepartments_PendingUserBlocked(t *testing.T) {
	r := newRouter(t)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.PendingUser("Central")))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, "pending_approval")
}

func TestDepartments_MemberCannotMutate(t *testing.T) {
	r := newRouter(t)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/", map[string]string{"name": "Youth"}, testutil.MemberUser("Central")))
	rec.AssertStatus(t, http.StatusForbidden)
}
