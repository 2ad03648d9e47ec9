// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Categories. Each has its own logging mode in configuration.
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Sign-in and account events (CategoryAuth).
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLogout                   = "logout"
	EventRegistered               = "registered"
	EventPasswordChanged          = "password_changed"
)

// Data and approval changes (CategoryAdmin).
const (
	EventUserStatusChanged     = "user_status_changed"
	EventAdminSeeded           = "admin_seeded"
	EventCongregationCreated   = "congregation_created"
	EventCongregationDeleted   = "congregation_deleted"
	EventDepartmentCreated     = "department_created"
	EventDepartmentDeleted     = "department_deleted"
	EventCollaboratorCreated   = "collaborator_created"
	EventCollaboratorDeleted   = "collaborator_deleted"
	EventEventCreated          = "event_created"
	EventEventUpdated          = "event_updated"
	EventEventDeleted          = "event_deleted"
	EventEventResultAttached   = "event_result_attached"
	EventEventResultIncomplete = "event_result_incomplete"
)

// Page sizes for Query.
const (
	DefaultLimit int64 = 50
	MaxLimit     int64 = 200
)

// Event is one entry of the audit trail.
//
// UserID is the profile the entry is about (the one signing in, or the one
// whose status changed); ActorID is the admin or member who acted. SubjectID
// names the record that changed: a congregation, department, collaborator
// or event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
	Category  string             `bson:"category"`
	EventType string             `bson:"event_type"`

	UserID       *primitive.ObjectID `bson:"user_id,omitempty"`
	ActorID      *primitive.ObjectID `bson:"actor_id,omitempty"`
	SubjectID    *primitive.ObjectID `bson:"subject_id,omitempty"`
	Congregation string              `bson:"congregation,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool              `bson:"success"`
	FailureReason string            `bson:"failure_reason,omitempty"`
	Details       map[string]string `bson:"details,omitempty"`
}

// QueryFilter selects audit entries. Zero fields do not filter. Since and
// Until bound the timestamp as [Since, Until).
type QueryFilter struct {
	Category  string
	EventType string
	UserID    *primitive.ObjectID
	SubjectID *primitive.ObjectID
	Since     time.Time
	Until     time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.UserID != nil {
		q["user_id"] = *f.UserID
	}
	if f.SubjectID != nil {
		q["subject_id"] = *f.SubjectID
	}
	ts := bson.M{}
	if !f.Since.IsZero() {
		ts["$gte"] = f.Since
	}
	if !f.Until.IsZero() {
		ts["$lt"] = f.Until
	}
	if len(ts) > 0 {
		q["timestamp"] = ts
	}
	return q
}

// limit clamps f.Limit into [1, MaxLimit], using DefaultLimit when unset.
func (f QueryFilter) limit() int64 {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	}
	return f.Limit
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log inserts e, filling in the ID and timestamp when unset.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return apperr.Remote("audit.log", err)
	}
	return nil
}

// Query returns the entries matching f, newest first, one page at a time.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(f.limit()).
		SetSkip(max(f.Offset, 0))

	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, apperr.Remote("audit.query", err)
	}
	defer cur.Close(ctx)

	out := []Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Remote("audit.query", err)
	}
	return out, nil
}

// Count returns how many entries match f, ignoring paging.
func (s *Store) Count(ctx context.Context, f QueryFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, f.query())
	if err != nil {
		return 0, apperr.Remote("audit.count", err)
	}
	return n, nil
}

// Page is Query plus Count for the same filter. The returned filter carries
// the effective limit.
func (s *Store) Page(ctx context.Context, f QueryFilter) ([]Event, int64, QueryFilter, error) {
	f.Limit = f.limit()
	f.Offset = max(f.Offset, 0)
	events, err := s.Query(ctx, f)
	if err != nil {
		return nil, 0, f, err
	}
	total, err := s.Count(ctx, f)
	if err != nil {
		return nil, 0, f, err
	}
	return events, total, f, nil
}
