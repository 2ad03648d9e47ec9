package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogFillsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	before := time.Now().Add(-time.Second)
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventRegistered,
		UserID:    &uid,
		Success:   true,
		Details:   map[string]string{"email": "ana@example.com"},
	}))

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].ID.IsZero())
	assert.True(t, events[0].Timestamp.After(before))
	assert.Equal(t, "ana@example.com", events[0].Details["email"])
}

func TestStore_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	subject := primitive.NewObjectID()
	for _, e := range []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Timestamp: day.Add(-time.Hour)},
		{Category: audit.CategoryAdmin, EventType: audit.EventEventCreated, SubjectID: &subject, Timestamp: day.Add(time.Hour)},
		{Category: audit.CategoryAdmin, EventType: audit.EventEventDeleted, SubjectID: &subject, Timestamp: day.Add(2 * time.Hour)},
		{Category: audit.CategoryAdmin, EventType: audit.EventCongregationCreated, Timestamp: day.Add(24 * time.Hour)},
	} {
		require.NoError(t, store.Log(ctx, e))
	}

	count := func(f audit.QueryFilter) int64 {
		n, err := store.Count(ctx, f)
		require.NoError(t, err)
		return n
	}
	assert.EqualValues(t, 4, count(audit.QueryFilter{}))
	assert.EqualValues(t, 3, count(audit.QueryFilter{Category: audit.CategoryAdmin}))
	assert.EqualValues(t, 1, count(audit.QueryFilter{EventType: audit.EventEventDeleted}))
	assert.EqualValues(t, 2, count(audit.QueryFilter{SubjectID: &subject}))
	assert.EqualValues(t, 2, count(audit.QueryFilter{Since: day, Until: day.Add(24 * time.Hour)}), "until is exclusive")
	assert.EqualValues(t, 3, count(audit.QueryFilter{Since: day}))
}

func TestStore_Page(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, total, eff, err := store.Page(ctx, audit.QueryFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.EqualValues(t, 2, eff.Limit)
	require.Len(t, events, 2)
	assert.Equal(t, base.Add(3*time.Minute), events[0].Timestamp.UTC())
	assert.Equal(t, base.Add(2*time.Minute), events[1].Timestamp.UTC())

	_, _, eff, err = store.Page(ctx, audit.QueryFilter{Limit: 10_000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, audit.MaxLimit, eff.Limit)
	assert.Zero(t, eff.Offset)

	_, _, eff, err = store.Page(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, audit.DefaultLimit, eff.Limit)
}
