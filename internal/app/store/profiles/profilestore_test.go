package profilestore_test

import (
	"errors"
	"testing"

	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/indexes"
	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/dalemusser/missio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*mongo.Database, *profilestore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db, profilestore.New(db)
}

func TestStore_Register(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Register(ctx, "  Ana@Example.COM ", "secret123", "Central")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.Email != "ana@example.com" {
		t.Errorf("Email: got %q", p.Email)
	}
	if p.Role != models.RoleUser {
		t.Errorf("Role: got %q", p.Role)
	}
	if p.Status != models.StatusPending || p.Approved {
		t.Errorf("expected pending and not approved, got status=%q approved=%v", p.Status, p.Approved)
	}
	if p.PasswordHash == "" || p.PasswordHash == "secret123" {
		t.Error("expected password to be hashed")
	}
}

func TestStore_Register_Validation(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Register(ctx, "a@example.com", "12345", "Central"); !apperr.IsValidation(err) {
		t.Errorf("short password: expected ValidationError, got %v", err)
	}
	if _, err := store.Register(ctx, "a@example.com", "123456", " "); !apperr.IsValidation(err) {
		t.Errorf("blank congregation: expected ValidationError, got %v", err)
	}
	if _, err := store.Register(ctx, "", "123456", "Central"); !apperr.IsValidation(err) {
		t.Errorf("blank email: expected ValidationError, got %v", err)
	}
}

func TestStore_Register_DuplicateEmail(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Register(ctx, "dup@example.com", "secret123", "Central"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := store.Register(ctx, "DUP@example.com", "secret123", "North")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Errorf("expected email ValidationError, got %v", err)
	}
}

func TestStore_Authenticate(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Register(ctx, "ana@example.com", "secret123", "Central")

	p, err := store.Authenticate(ctx, "ANA@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if p.ID != created.ID {
		t.Errorf("wrong profile returned")
	}

	p, err = store.Authenticate(ctx, "ana@example.com", "nope-nope")
	if !errors.Is(err, profilestore.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if p.ID != created.ID {
		t.Error("expected profile returned alongside ErrWrongPassword")
	}

	if _, err := store.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, profilestore.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_Authenticate_UnknownEmailComparesHash(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Register(ctx, "ana@example.com", "secret123", "Central"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	count, restore := profilestore.CountHashCompares()
	defer restore()

	if _, err := store.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, profilestore.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if count() != 1 {
		t.Errorf("unknown e-mail: %d hash comparisons, want 1", count())
	}
	if _, err := store.Authenticate(ctx, "ana@example.com", "wrong-one"); !errors.Is(err, profilestore.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if count() != 2 {
		t.Errorf("wrong password: %d hash comparisons in total, want 2", count())
	}
}

func TestStore_SetStatus_Transitions(t *testing.T) {
	db, store := setup(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "admin@example.com")
	user := fixtures.CreatePending(ctx, "user@example.com", "Central")

	tests := []struct {
		to      string
		wantErr bool
	}{
		{models.StatusRejected, false}, // pending → rejected
		{models.StatusPending, true},   // rejected → pending not allowed
		{models.StatusApproved, false}, // rejected → approved
		{models.StatusRejected, true},  // approved → rejected not allowed
		{models.StatusApproved, true},  // approved → approved not allowed
	}
	for _, tt := range tests {
		before, _ := store.GetByID(ctx, user.ID)
		from, err := store.SetStatus(ctx, admin.ID, user.ID, tt.to)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s → %s: err = %v, wantErr %v", before.Status, tt.to, err, tt.wantErr)
		}
		if from != before.Status {
			t.Errorf("from: got %q, want %q", from, before.Status)
		}
		if tt.wantErr && !apperr.IsValidation(err) {
			t.Errorf("%s → %s: expected ValidationError, got %v", before.Status, tt.to, err)
		}
	}

	final, _ := store.GetByID(ctx, user.ID)
	if final.Status != models.StatusApproved || !final.Approved {
		t.Errorf("expected approved/true, got %q/%v", final.Status, final.Approved)
	}
}

func TestStore_SetStatus_KeepsMirrorInSync(t *testing.T) {
	db, store := setup(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "admin@example.com")
	user := fixtures.CreatePending(ctx, "user@example.com", "Central")

	if _, err := store.SetStatus(ctx, admin.ID, user.ID, models.StatusRejected); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	var raw bson.M
	if err := db.Collection("profiles").FindOne(ctx, bson.M{"_id": user.ID}).Decode(&raw); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if raw["status"] != models.StatusRejected || raw["approved"] != false {
		t.Errorf("stored status/approved out of sync: %v / %v", raw["status"], raw["approved"])
	}
}

func TestStore_SetStatus_Self(t *testing.T) {
	db, store := setup(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateProfile(ctx, "admin@example.com", models.RoleAdmin, models.StatusRejected, "")
	if _, err := store.SetStatus(ctx, admin.ID, admin.ID, models.StatusApproved); !apperr.IsDenied(err) {
		t.Errorf("expected denied, got %v", err)
	}
}

func TestStore_SetStatus_UnknownTarget(t *testing.T) {
	db, store := setup(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "admin@example.com")
	if _, err := store.SetStatus(ctx, admin.ID, primitive.NewObjectID(), models.StatusApproved); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestStore_PendingListAndCount(t *testing.T) {
	db, store := setup(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "admin@example.com")
	fixtures.CreatePending(ctx, "p1@example.com", "Central")
	fixtures.CreatePending(ctx, "p2@example.com", "North")
	fixtures.CreateProfile(ctx, "r@example.com", models.RoleUser, models.StatusRejected, "North")

	n, err := store.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountPending: got %d, want 2", n)
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("ListPending: got %d, want 2", len(pending))
	}
	for _, p := range pending {
		if p.PasswordHash != "" {
			t.Error("expected password hash to be projected out")
		}
	}

	all, _ := store.List(ctx)
	if len(all) != 4 {
		t.Errorf("List: got %d, want 4", len(all))
	}
}

func TestStore_EnsureAdmin(t *testing.T) {
	db, store := setup(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, created, err := store.EnsureAdmin(ctx, "boss@example.com", "secret123")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if !created || p.Role != models.RoleAdmin || p.Status != models.StatusApproved {
		t.Errorf("unexpected result: created=%v %+v", created, p)
	}

	// Second call is a no-op promotion.
	_, created, err = store.EnsureAdmin(ctx, "boss@example.com", "secret123")
	if err != nil || created {
		t.Errorf("second EnsureAdmin: created=%v err=%v", created, err)
	}

	// An existing pending user is promoted and keeps their password.
	u := fixtures.CreatePending(ctx, "promote@example.com", "Central")
	_, created, err = store.EnsureAdmin(ctx, "promote@example.com", "")
	if err != nil || created {
		t.Fatalf("promote: created=%v err=%v", created, err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.Role != models.RoleAdmin || got.Status != models.StatusApproved || !got.Approved {
		t.Errorf("not promoted: %+v", got)
	}
	if _, err := store.Authenticate(ctx, "promote@example.com", "secret123"); err != nil {
		t.Errorf("password changed by promotion: %v", err)
	}
}

func TestStore_ChangePassword(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Register(ctx, "ana@example.com", "secret123", "Central")
	if err := store.ChangePassword(ctx, p.ID, "abc"); !apperr.IsValidation(err) {
		t.Errorf("short password: expected ValidationError, got %v", err)
	}
	if err := store.ChangePassword(ctx, p.ID, "newsecret"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := store.Authenticate(ctx, "ana@example.com", "newsecret"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestStore_TouchSignIn(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Register(ctx, "ana@example.com", "secret123", "Central")
	if err := store.TouchSignIn(ctx, p.ID); err != nil {
		t.Fatalf("TouchSignIn failed: %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.LastSignInAt == nil {
		t.Error("expected last_sign_in_at to be set")
	}
}

func TestStore_EmailsByIDs(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Register(ctx, "ana@example.com", "secret123", "Central")
	b, _ := store.Register(ctx, "bia@example.com", "secret123", "Central")
	missing := primitive.NewObjectID()

	got, err := store.EmailsByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, missing})
	if err != nil {
		t.Fatalf("EmailsByIDs failed: %v", err)
	}
	if len(got) != 2 || got[a.ID] != "ana@example.com" || got[b.ID] != "bia@example.com" {
		t.Errorf("unexpected emails: %v", got)
	}

	empty, err := store.EmailsByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty map, got %v, %v", empty, err)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db, _ := setup(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateMember(ctx, "ana@example.com", "Central")
	f := profilestore.NewFetcher(db)

	su := f.FetchUser(ctx, p.ID.Hex())
	if su == nil {
		t.Fatal("expected user")
	}
	if su.Email != p.Email || su.Congregation != "Central" || !su.IsApproved() || su.IsAdmin() {
		t.Errorf("unexpected session user: %+v", su)
	}

	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("expected nil for unknown user")
	}
	if f.FetchUser(ctx, "not-an-id") != nil {
		t.Error("expected nil for malformed id")
	}
}
