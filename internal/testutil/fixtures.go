package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCongregation inserts a congregation with the given name.
func (f *Fixtures) CreateCongregation(ctx context.Context, name string) models.Congregation {
	f.t.Helper()

	c := models.Congregation{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("congregations").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test congregation: %v", err)
	}
	return c
}

// CreateCollaborator inserts a collaborator tagged with congregation (may be blank).
func (f *Fixtures) CreateCollaborator(ctx context.Context, name, congregation string) models.Collaborator {
	f.t.Helper()

	c := models.Collaborator{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Congregation: congregation,
	}
	if _, err := f.db.Collection("collaborators").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test collaborator: %v", err)
	}
	return c
}

// CreateEvent inserts a planned event for congregation at when.
func (f *Fixtures) CreateEvent(ctx context.Context, what, congregation string, when time.Time) models.Event {
	f.t.Helper()

	e := models.Event{
		ID:           primitive.NewObjectID(),
		What:         what,
		Why:          "Evangelism",
		Where:        "Town square",
		When:         when.UTC(),
		Who:          "Ana, Bruno",
		Congregation: congregation,
		Status:       models.EventPlanned,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return e
}

// CreateCompletedEvent inserts a completed event carrying a result with the
// given decision count and no contacts.
func (f *Fixtures) CreateCompletedEvent(ctx context.Context, what, congregation string, when time.Time, decisions int) models.Event {
	f.t.Helper()

	e := models.Event{
		ID:           primitive.NewObjectID(),
		What:         what,
		Why:          "Evangelism",
		Where:        "Town square",
		When:         when.UTC(),
		Who:          "Ana",
		Congregation: congregation,
		Status:       models.EventCompleted,
		Result: &models.EventResult{
			ApproachedCount:   decisions * 4,
			CollaboratorCount: 2,
			DecisionsCount:    decisions,
		},
		ResultVersion: primitive.NewObjectID().Hex(),
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return e
}

// CreateProfile inserts a profile with the given role, status and
// congregation. The password is always "secret123".
func (f *Fixtures) CreateProfile(ctx context.Context, email, role, status, congregation string) models.Profile {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	p := models.Profile{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		Approved:     status == models.StatusApproved,
		Congregation: congregation,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateAdmin inserts an approved admin profile.
func (f *Fixtures) CreateAdmin(ctx context.Context, email string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, email, models.RoleAdmin, models.StatusApproved, "")
}

// CreateMember inserts an approved user in congregation.
func (f *Fixtures) CreateMember(ctx context.Context, email, congregation string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, email, models.RoleUser, models.StatusApproved, congregation)
}

// CreatePending inserts a user awaiting approval.
func (f *Fixtures) CreatePending(ctx context.Context, email, congregation string) models.Profile {
	f.t.Helper()
	return f.CreateProfile(ctx, email, models.RoleUser, models.StatusPending, congregation)
}
