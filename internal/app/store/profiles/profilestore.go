// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/normalize"
	"github.com/dalemusser/missio/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration and
// password change.
const MinPasswordLength = 6

var (
	// ErrUserNotFound is returned by Authenticate for an unknown e-mail.
	ErrUserNotFound = errors.New("no profile with this e-mail")
	// ErrWrongPassword is returned by Authenticate for a bad password.
	ErrWrongPassword = errors.New("wrong password")
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

var compareHash = bcrypt.CompareHashAndPassword

// decoy is compared against when no profile matches, so an unknown e-mail
// costs as much as a wrong password.
var decoy = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("missio-decoy-password"), bcryptCost)
	if err != nil {
		return nil
	}
	return h
})

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// Register creates a user profile awaiting approval.
func (s *Store) Register(ctx context.Context, email, password, congregation string) (models.Profile, error) {
	congregation = strings.TrimSpace(congregation)
	if congregation == "" {
		return models.Profile{}, apperr.Required("congregation")
	}
	return s.create(ctx, email, password, models.RoleUser, models.StatusPending, congregation)
}

func (s *Store) create(ctx context.Context, email, password, role, status, congregation string) (models.Profile, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.Profile{}, apperr.Required("email")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return models.Profile{}, err
	}
	p := models.Profile{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		Approved:     status == models.StatusApproved,
		Congregation: congregation,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, apperr.Invalid("email", "is already registered")
		}
		return models.Profile{}, apperr.Remote("profiles.create", err)
	}
	return p, nil
}

// Authenticate checks an e-mail and password. The returned errors are
// ErrUserNotFound, ErrWrongPassword or a RemoteOperationError; on
// ErrWrongPassword the profile is still returned so the caller can audit it.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.Profile, error) {
	p, err := s.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			_ = compareHash(decoy(), []byte(password))
			return models.Profile{}, ErrUserNotFound
		}
		return models.Profile{}, err
	}
	if compareHash([]byte(p.PasswordHash), []byte(password)) != nil {
		return p, ErrWrongPassword
	}
	return p, nil
}

// GetByID loads a profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Profile{}, apperr.Remote("profiles.get", err)
	}
	return p, nil
}

// GetByEmail looks a profile up by normalized e-mail.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&p); err != nil {
		return models.Profile{}, apperr.Remote("profiles.get", err)
	}
	return p, nil
}

// List returns every profile, newest first.
func (s *Store) List(ctx context.Context) ([]models.Profile, error) {
	return s.list(ctx, bson.M{})
}

// ListPending returns profiles awaiting approval, newest first.
func (s *Store) ListPending(ctx context.Context) ([]models.Profile, error) {
	return s.list(ctx, bson.M{"status": models.StatusPending})
}

// CountPending returns the number of profiles awaiting approval.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"status": models.StatusPending})
	if err != nil {
		return 0, apperr.Remote("profiles.count_pending", err)
	}
	return n, nil
}

// EmailsByIDs maps each found profile ID to its e-mail. Missing IDs are
// simply absent from the result.
func (s *Store) EmailsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"email": 1}))
	if err != nil {
		return nil, apperr.Remote("profiles.emails", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Email string             `bson:"email"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, apperr.Remote("profiles.emails", err)
		}
		out[row.ID] = row.Email
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Remote("profiles.emails", err)
	}
	return out, nil
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Profile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"password_hash": 0})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Remote("profiles.list", err)
	}
	defer cur.Close(ctx)

	out := []models.Profile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Remote("profiles.list", err)
	}
	return out, nil
}

// SetStatus moves target through the approval state machine on behalf of
// actor and returns the previous status. Status and the approved mirror are
// written in one update, conditional on the status read, so a concurrent
// change fails instead of being overwritten.
func (s *Store) SetStatus(ctx context.Context, actorID, targetID primitive.ObjectID, status string) (string, error) {
	status = normalize.Status(status)
	if actorID == targetID {
		return "", apperr.Denied("profiles.set_status: cannot change own status")
	}
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return "", apperr.Invalid("status", "must be approved or rejected")
	}

	p, err := s.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}
	from := p.Status
	if !models.CanTransition(from, status) {
		return from, apperr.Invalid("status", "cannot change from "+from+" to "+status)
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": targetID, "status": from},
		bson.M{"$set": bson.M{
			"status":   status,
			"approved": status == models.StatusApproved,
		}})
	if err != nil {
		return from, apperr.Remote("profiles.set_status", err)
	}
	if res.MatchedCount == 0 {
		return from, apperr.Invalid("status", "was changed by someone else; reload and try again")
	}
	return from, nil
}

// TouchSignIn stamps last_sign_in_at.
func (s *Store) TouchSignIn(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_sign_in_at": time.Now().UTC()}})
	return apperr.Remote("profiles.touch_sign_in", err)
}

// ChangePassword replaces the password of a profile.
func (s *Store) ChangePassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password_hash": hash}})
	if err != nil {
		return apperr.Remote("profiles.change_password", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("profiles.change_password")
	}
	return nil
}

// EnsureAdmin makes sure a profile with email exists as an approved admin.
// An existing profile is promoted and keeps its password; otherwise one is
// created with password. created reports which happened.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) (p models.Profile, created bool, err error) {
	existing, err := s.GetByEmail(ctx, email)
	switch {
	case err == nil:
		_, err = s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{
			"role":     models.RoleAdmin,
			"status":   models.StatusApproved,
			"approved": true,
		}})
		if err != nil {
			return models.Profile{}, false, apperr.Remote("profiles.ensure_admin", err)
		}
		existing.Role = models.RoleAdmin
		existing.Status = models.StatusApproved
		existing.Approved = true
		return existing, false, nil
	case apperr.IsNotFound(err):
		p, err = s.create(ctx, email, password, models.RoleAdmin, models.StatusApproved, "")
		return p, err == nil, err
	default:
		return models.Profile{}, false, err
	}
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperr.Invalid("password", "must be at least 6 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
