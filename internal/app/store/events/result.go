package eventstore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/txn"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AttachResult completes an event visible in scope and replaces its contacts
// with res.Contacts.
//
// The write runs in a transaction. On deployments without transactions it
// falls back to: insert the new contacts under a fresh result version, point
// the event at that version, then delete contacts of older versions. Reads
// only return contacts of the current version, so a failure in the last step
// leaves stale rows but a correct event; it is reported as a
// PartialCompletionError.
func (s *Store) AttachResult(ctx context.Context, id primitive.ObjectID, res models.EventResult, scope bson.M) (models.Event, error) {
	res, err := cleanResult(res)
	if err != nil {
		return models.Event{}, err
	}
	version := newVersion()
	docs := contactDocs(id, version, res.Contacts)
	set := bson.M{"$set": bson.M{
		"status":         models.EventCompleted,
		"result":         res,
		"result_version": version,
	}}

	err = s.inTxn(ctx, func(sc mongo.SessionContext) error {
		upd, err := s.c.UpdateOne(sc, scoped(id, scope), set)
		if err != nil {
			return err
		}
		if upd.MatchedCount == 0 {
			return apperr.NotFound("events.attach_result")
		}
		if _, err := s.contacts.DeleteMany(sc, bson.M{"event_id": id}); err != nil {
			return err
		}
		if len(docs) > 0 {
			if _, err := s.contacts.InsertMany(sc, docs); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, txn.ErrNotSupported) {
		err = s.attachSequential(ctx, id, version, set, docs, scope)
	}
	if err != nil && !apperr.IsPartial(err) {
		return models.Event{}, apperr.Remote("events.attach_result", err)
	}

	e, getErr := s.Get(ctx, id, scope)
	if err != nil {
		return e, err
	}
	return e, getErr
}

func (s *Store) attachSequential(ctx context.Context, id primitive.ObjectID, version string, set bson.M, docs []interface{}, scope bson.M) error {
	cleanup := func() {
		_, _ = s.contacts.DeleteMany(ctx, bson.M{"event_id": id, "result_version": version})
	}

	if len(docs) > 0 {
		if _, err := s.contacts.InsertMany(ctx, docs); err != nil {
			cleanup()
			return err
		}
	}

	upd, err := s.c.UpdateOne(ctx, scoped(id, scope), set)
	if err != nil {
		cleanup()
		return err
	}
	if upd.MatchedCount == 0 {
		cleanup()
		return apperr.NotFound("events.attach_result")
	}

	if _, err := s.purge.DeleteMany(ctx, bson.M{
		"event_id":       id,
		"result_version": bson.M{"$ne": version},
	}); err != nil {
		return &apperr.PartialCompletionError{
			Op:        "events.attach_result",
			Completed: []string{StepInsertContacts, StepUpdateEvent},
			Failed:    StepDeleteContacts,
			Err:       err,
		}
	}
	return nil
}

// joinContacts fills Result.Contacts of each completed event with the
// contacts of its current result version, in submission order.
func (s *Store) joinContacts(ctx context.Context, events []models.Event) error {
	ids := make([]primitive.ObjectID, 0, len(events))
	byID := make(map[primitive.ObjectID]int, len(events))
	for i, e := range events {
		if e.Result == nil {
			continue
		}
		e.Result.Contacts = []models.Contact{}
		ids = append(ids, e.ID)
		byID[e.ID] = i
	}
	if len(ids) == 0 {
		return nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.contacts.Find(ctx, bson.M{"event_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return apperr.Remote("contacts.list", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var c models.Contact
		if err := cur.Decode(&c); err != nil {
			return apperr.Remote("contacts.list", err)
		}
		i, ok := byID[c.EventID]
		if !ok || c.ResultVersion != events[i].ResultVersion {
			continue
		}
		events[i].Result.Contacts = append(events[i].Result.Contacts, c)
	}
	if err := cur.Err(); err != nil {
		return apperr.Remote("contacts.list", err)
	}
	return nil
}

func cleanResult(res models.EventResult) (models.EventResult, error) {
	switch {
	case res.ApproachedCount < 0:
		return res, apperr.Invalid("approachedCount", "must be 0 or more")
	case res.CollaboratorCount < 0:
		return res, apperr.Invalid("collaboratorCount", "must be 0 or more")
	case res.DecisionsCount < 0:
		return res, apperr.Invalid("decisionsCount", "must be 0 or more")
	}
	res.Notes = strings.TrimSpace(res.Notes)
	res.FeedbackPositive = strings.TrimSpace(res.FeedbackPositive)
	res.FeedbackImprove = strings.TrimSpace(res.FeedbackImprove)

	contacts := make([]models.Contact, 0, len(res.Contacts))
	for _, c := range res.Contacts {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return res, apperr.Required("contacts.name")
		}
		c.SpiritualStatus = strings.ToLower(strings.TrimSpace(c.SpiritualStatus))
		if !models.IsValidSpiritualStatus(c.SpiritualStatus) {
			return res, apperr.Invalid("contacts.spiritualStatus", "must be curious, open, decided or blank")
		}
		c.Phone = strings.TrimSpace(c.Phone)
		c.Address = strings.TrimSpace(c.Address)
		c.Observation = strings.TrimSpace(c.Observation)
		contacts = append(contacts, c)
	}
	res.Contacts = contacts
	return res, nil
}

func contactDocs(eventID primitive.ObjectID, version string, contacts []models.Contact) []interface{} {
	docs := make([]interface{}, 0, len(contacts))
	for _, c := range contacts {
		c.ID = primitive.NewObjectID()
		c.EventID = eventID
		c.ResultVersion = version
		docs = append(docs, c)
	}
	return docs
}
