package indexes_test

import (
	"testing"

	"github.com/dalemusser/missio/internal/app/system/indexes"
	"github.com/dalemusser/missio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) []string {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	specs, err := db.Collection(coll).Indexes().ListSpecifications(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names
}

func TestEnsureAll_CreatesAndRepeats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, indexes.EnsureAll(ctx, db, zap.NewNop()))
	require.NoError(t, indexes.EnsureAll(ctx, db, zap.NewNop()), "second run must be a no-op")

	want := map[string][]string{
		"profiles":      {"uniq_profiles_email", "idx_profiles_status_created"},
		"congregations": {"idx_congregations_nameci__id"},
		"departments":   {"idx_departments_nameci__id"},
		"collaborators": {"idx_collaborators_nameci__id", "idx_collaborators_congregation_nameci"},
		"events":        {"idx_events_congregation_created", "idx_events_created", "idx_events_status_when"},
		"contacts":      {"idx_contacts_event_version__id"},
		"audit_events":  {"idx_audit_timestamp", "idx_audit_user_timestamp", "idx_audit_subject_timestamp", "idx_audit_category_type_timestamp"},
	}
	for coll, names := range want {
		got := indexNames(t, db, coll)
		assert.Subset(t, got, names, coll)
		assert.Len(t, got, len(names)+1, "%s: only _id_ beyond the desired set", coll)
	}
}

func TestEnsureAll_ProfileEmailUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, indexes.EnsureAll(ctx, db, zap.NewNop()))

	coll := db.Collection("profiles")
	_, err := coll.InsertOne(ctx, bson.M{"email": "a@example.com"})
	require.NoError(t, err)
	_, err = coll.InsertOne(ctx, bson.M{"email": "a@example.com"})
	assert.True(t, mongo.IsDuplicateKeyError(err), "got %v", err)
}

func TestEnsureAll_ReplacesRenamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys as idx_events_created under an older name.
	_, err := db.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("legacy_created"),
	})
	require.NoError(t, err)

	require.NoError(t, indexes.EnsureAll(ctx, db, zap.NewNop()))

	got := indexNames(t, db, "events")
	assert.NotContains(t, got, "legacy_created")
	assert.Contains(t, got, "idx_events_created")
}

func TestEnsureAll_ReportsDuplicateEmails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("profiles").InsertMany(ctx, []interface{}{
		bson.M{"email": "dup@example.com"},
		bson.M{"email": "dup@example.com"},
	})
	require.NoError(t, err)

	err = indexes.EnsureAll(ctx, db, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiles.uniq_profiles_email")

	// The other collections are still reconciled.
	assert.Contains(t, indexNames(t, db, "events"), "idx_events_status_when")
}
