// internal/app/system/indexes/indexes.go

// Package indexes reconciles the MongoDB indexes every store relies on.
// EnsureAll runs from the EnsureSchema hook and is safe to repeat.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// spec is one desired index. Names are stable so that a changed definition
// replaces the old index instead of adding a second one.
type spec struct {
	name   string
	keys   bson.D
	unique bool
}

func asc(field string) bson.E  { return bson.E{Key: field, Value: 1} }
func desc(field string) bson.E { return bson.E{Key: field, Value: -1} }

// collections is the index layout of every collection, in creation order.
var collections = []struct {
	name  string
	specs []spec
}{
	{"profiles", []spec{
		{name: "uniq_profiles_email", keys: bson.D{asc("email")}, unique: true},
		{name: "idx_profiles_status_created", keys: bson.D{asc("status"), desc("created_at")}},
	}},
	// Reference data is listed by folded name; names are not unique.
	{"congregations", []spec{
		{name: "idx_congregations_nameci__id", keys: bson.D{asc("name_ci"), asc("_id")}},
	}},
	{"departments", []spec{
		{name: "idx_departments_nameci__id", keys: bson.D{asc("name_ci"), asc("_id")}},
	}},
	{"collaborators", []spec{
		{name: "idx_collaborators_nameci__id", keys: bson.D{asc("name_ci"), asc("_id")}},
		{name: "idx_collaborators_congregation_nameci", keys: bson.D{asc("congregation"), asc("name_ci")}},
	}},
	{"events", []spec{
		{name: "idx_events_congregation_created", keys: bson.D{asc("congregation"), desc("created_at")}},
		{name: "idx_events_created", keys: bson.D{desc("created_at")}},
		{name: "idx_events_status_when", keys: bson.D{asc("status"), asc("when")}},
	}},
	{"contacts", []spec{
		{name: "idx_contacts_event_version__id", keys: bson.D{asc("event_id"), asc("result_version"), asc("_id")}},
	}},
	{"audit_events", []spec{
		{name: "idx_audit_timestamp", keys: bson.D{desc("timestamp")}},
		{name: "idx_audit_user_timestamp", keys: bson.D{asc("user_id"), desc("timestamp")}},
		{name: "idx_audit_subject_timestamp", keys: bson.D{asc("subject_id"), desc("timestamp")}},
		{name: "idx_audit_category_type_timestamp", keys: bson.D{asc("category"), asc("event_type"), desc("timestamp")}},
	}},
}

// EnsureAll reconciles every collection and reports all failures together so
// startup can fail with the full picture.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, c := range collections {
		coll := db.Collection(c.name)
		for _, s := range c.specs {
			if err := ensure(ctx, coll, s, logger); err != nil {
				problems = append(problems, fmt.Sprintf("%s.%s: %v", c.name, s.name, err))
			}
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
}

func signature(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", k.Key, k.Value))
	}
	return strings.Join(parts, ",")
}

// ensure creates s on coll. An index with the same keys is kept when its name
// and uniqueness match, and dropped and recreated otherwise.
func ensure(ctx context.Context, coll *mongo.Collection, s spec, logger *zap.Logger) error {
	log := logger.With(zap.String("collection", coll.Name()), zap.String("index", s.name))

	existing, err := find(ctx, coll, signature(s.keys))
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Name == s.name && existing.Unique == s.unique {
			log.Debug("index present")
			return nil
		}
		if _, err := coll.Indexes().DropOne(ctx, existing.Name); err != nil {
			return fmt.Errorf("drop %s: %w", existing.Name, err)
		}
		log.Info("dropped index with outdated definition", zap.String("old", existing.Name))
	}

	opts := options.Index().SetName(s.name)
	if s.unique {
		opts.SetUnique(true)
	}
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: s.keys, Options: opts}); err != nil {
		if s.unique && wafflemongo.IsDup(err) {
			return errors.New("cannot create unique index: duplicates present")
		}
		return err
	}
	log.Info("index created")
	return nil
}

func find(ctx context.Context, coll *mongo.Collection, sig string) (*existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// The collection does not exist yet.
		var ce mongo.CommandError
		if errors.As(err, &ce) && ce.Code == 26 {
			return nil, nil
		}
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
		if signature(idx.Key) == sig {
			return &idx, nil
		}
	}
	return nil, cur.Err()
}
