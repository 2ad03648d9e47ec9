package reportpolicy_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/missio/internal/app/policy/reportpolicy"
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func withUser(role, status, congregation string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:           primitive.NewObjectID().Hex(),
		Role:         role,
		Status:       status,
		Congregation: congregation,
	}
}

func TestCanViewIndicators(t *testing.T) {
	admin := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), withUser("admin", "approved", ""))
	user := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), withUser("user", "approved", "A"))

	assert.True(t, reportpolicy.CanViewIndicators(admin))
	assert.False(t, reportpolicy.CanViewIndicators(user))
	assert.False(t, reportpolicy.CanViewIndicators(httptest.NewRequest("GET", "/", nil)))
}

func TestMonthFilter_UserIsScoped(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), withUser("user", "approved", "A"))
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	f, ok := reportpolicy.CanViewMonthlyReport(req).MonthFilter(start, end)
	require.True(t, ok)
	assert.Equal(t, "A", f["congregation"])
	assert.Equal(t, "completed", f["status"])
	assert.Equal(t, bson.M{"$gte": start, "$lt": end}, f["when"])
}

func TestMonthFilter_AdminUnscoped(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), withUser("admin", "approved", "A"))
	f, ok := reportpolicy.CanViewMonthlyReport(req).MonthFilter(time.Now(), time.Now())
	require.True(t, ok)
	_, scoped := f["congregation"]
	assert.False(t, scoped)
}

func TestMonthFilter_NoCongregation(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), withUser("user", "approved", ""))
	_, ok := reportpolicy.CanViewMonthlyReport(req).MonthFilter(time.Now(), time.Now())
	assert.False(t, ok)
}
