// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/txn"
	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Steps of a result attachment, as reported in a PartialCompletionError.
const (
	StepInsertContacts = "insert contacts"
	StepUpdateEvent    = "update event"
	StepDeleteContacts = "delete previous contacts"
	StepDeleteEvent    = "delete event"
)

// ContactRemover deletes contact documents. *mongo.Collection satisfies it.
type ContactRemover interface {
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Store reads and writes events and the contacts owned by their results.
type Store struct {
	client   *mongo.Client
	c        *mongo.Collection
	contacts *mongo.Collection

	// purge removes contacts after the event write has landed on the
	// non-transactional path.
	purge      ContactRemover
	sequential bool
}

// Option adjusts a Store built by New.
type Option func(*Store)

// Sequential skips transactions and always uses the ordered fallback, as on
// a standalone server.
func Sequential() Option {
	return func(s *Store) { s.sequential = true }
}

// WithContactRemover replaces what removes superseded contacts on the
// non-transactional path.
func WithContactRemover(r ContactRemover) Option {
	return func(s *Store) { s.purge = r }
}

func New(db *mongo.Database, opts ...Option) *Store {
	s := &Store{
		client:   db.Client(),
		c:        db.Collection("events"),
		contacts: db.Collection("contacts"),
	}
	s.purge = s.contacts
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inTxn runs fn in a transaction, or returns txn.ErrNotSupported when the
// store is sequential.
func (s *Store) inTxn(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	if s.sequential {
		return txn.ErrNotSupported
	}
	return txn.Run(ctx, s.client, fn)
}

// Create inserts a planned event. What, why, where, when and who are required.
func (s *Store) Create(ctx context.Context, f models.EventFields) (models.Event, error) {
	f = cleanFields(f)
	if err := validateFields(f); err != nil {
		return models.Event{}, err
	}
	e := models.Event{
		ID:           primitive.NewObjectID(),
		What:         f.What,
		Why:          f.Why,
		Where:        f.Where,
		When:         f.When.UTC(),
		Who:          f.Who,
		How:          f.How,
		HowMuch:      f.HowMuch,
		Congregation: f.Congregation,
		Status:       models.EventPlanned,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, apperr.Remote("events.create", err)
	}
	return e, nil
}

// Update replaces the 5W2H fields and congregation of an event visible in
// scope. Status and result are left alone.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, f models.EventFields, scope bson.M) error {
	f = cleanFields(f)
	if err := validateFields(f); err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, scoped(id, scope), bson.M{"$set": bson.M{
		"what":         f.What,
		"why":          f.Why,
		"where":        f.Where,
		"when":         f.When.UTC(),
		"who":          f.Who,
		"how":          f.How,
		"how_much":     f.HowMuch,
		"congregation": f.Congregation,
	}})
	if err != nil {
		return apperr.Remote("events.update", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("events.update")
	}
	return nil
}

// Get loads one event visible in scope, with the contacts of its current result.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID, scope bson.M) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, scoped(id, scope)).Decode(&e); err != nil {
		return models.Event{}, apperr.Remote("events.get", err)
	}
	events := []models.Event{e}
	if err := s.joinContacts(ctx, events); err != nil {
		return models.Event{}, err
	}
	return events[0], nil
}

// List returns the events matching scope, newest first, with contacts.
func (s *Store) List(ctx context.Context, scope bson.M) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	events, err := s.find(ctx, "events.list", scope, opts)
	if err != nil {
		return nil, err
	}
	if err := s.joinContacts(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListForStats returns the events matching filter without contacts. It feeds
// the aggregation code, which only reads counts.
func (s *Store) ListForStats(ctx context.Context, filter bson.M) ([]models.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "when", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"how": 0, "how_much": 0, "result.notes": 0, "result.feedback_positive": 0, "result.feedback_improve": 0})
	return s.find(ctx, "events.stats", filter, opts)
}

// ListWithContacts returns the events matching filter ordered by when, with
// contacts. Reports use it.
func (s *Store) ListWithContacts(ctx context.Context, filter bson.M) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "when", Value: 1}, {Key: "_id", Value: 1}})
	events, err := s.find(ctx, "events.report", filter, opts)
	if err != nil {
		return nil, err
	}
	if err := s.joinContacts(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes an event visible in scope together with its contacts.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, scope bson.M) error {
	err := s.inTxn(ctx, func(sc mongo.SessionContext) error {
		res, err := s.c.DeleteOne(sc, scoped(id, scope))
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return apperr.NotFound("events.delete")
		}
		_, err = s.contacts.DeleteMany(sc, bson.M{"event_id": id})
		return err
	})
	if errors.Is(err, txn.ErrNotSupported) {
		return s.deleteSequential(ctx, id, scope)
	}
	return apperr.Remote("events.delete", err)
}

func (s *Store) deleteSequential(ctx context.Context, id primitive.ObjectID, scope bson.M) error {
	res, err := s.c.DeleteOne(ctx, scoped(id, scope))
	if err != nil {
		return apperr.Remote("events.delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("events.delete")
	}
	if _, err := s.purge.DeleteMany(ctx, bson.M{"event_id": id}); err != nil {
		return &apperr.PartialCompletionError{
			Op:        "events.delete",
			Completed: []string{StepDeleteEvent},
			Failed:    StepDeleteContacts,
			Err:       err,
		}
	}
	return nil
}

func (s *Store) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]models.Event, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Remote(op, err)
	}
	return out, nil
}

func scoped(id primitive.ObjectID, scope bson.M) bson.M {
	if len(scope) == 0 {
		return bson.M{"_id": id}
	}
	return bson.M{"$and": []bson.M{{"_id": id}, scope}}
}

func cleanFields(f models.EventFields) models.EventFields {
	f.What = strings.TrimSpace(f.What)
	f.Why = strings.TrimSpace(f.Why)
	f.Where = strings.TrimSpace(f.Where)
	f.Who = strings.Join(models.WhoNames(f.Who), ", ")
	f.How = strings.TrimSpace(f.How)
	f.HowMuch = strings.TrimSpace(f.HowMuch)
	f.Congregation = strings.TrimSpace(f.Congregation)
	return f
}

func validateFields(f models.EventFields) error {
	switch {
	case f.What == "":
		return apperr.Required("what")
	case f.Why == "":
		return apperr.Required("why")
	case f.Where == "":
		return apperr.Required("where")
	case f.When.IsZero():
		return apperr.Required("when")
	case f.Who == "":
		return apperr.Required("who")
	}
	return nil
}

func newVersion() string {
	return uuid.NewString()
}
