package collaboratorstore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/missio/internal/app/policy/collaboratorpolicy"
	collaboratorstore "github.com/dalemusser/missio/internal/app/store/collaborators"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/dalemusser/missio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_Add(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collaboratorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Add(ctx, models.Collaborator{
		Name:         " Ana  Souza ",
		Contact:      " 555-0101 ",
		Congregation: "Central",
		Observation:  " Maria <maria@ex.com> speaks Spanish ",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if c.Name != "Ana Souza" {
		t.Errorf("Name: got %q", c.Name)
	}
	if c.Contact != "555-0101" {
		t.Errorf("Contact: got %q", c.Contact)
	}
	if c.Observation != "Maria <maria@ex.com> speaks Spanish" {
		t.Errorf("Observation: got %q", c.Observation)
	}
}

func TestStore_Add_NameRequired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collaboratorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Add(ctx, models.Collaborator{Contact: "555"})
	if !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestStore_Add_RejectsComma(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collaboratorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Add(ctx, models.Collaborator{Name: "Silva, João", Congregation: "Central"})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("expected a name ValidationError, got %v", err)
	}
	n, err := store.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing stored, got %d", n)
	}
}

func TestStore_List_Scoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collaboratorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateCollaborator(ctx, "Ana", "Central")
	fixtures.CreateCollaborator(ctx, "Bruno", "North")
	fixtures.CreateCollaborator(ctx, "Carla", "")
	// A document written without the field at all is also "unset".
	if _, err := db.Collection("collaborators").InsertOne(ctx, bson.M{"name": "Davi", "name_ci": "davi"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	all, err := store.List(ctx, collaboratorpolicy.Scope{All: true}.Filter())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("admin: expected 4, got %d", len(all))
	}

	central, err := store.List(ctx, collaboratorpolicy.Scope{Congregation: "Central"}.Filter())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	names := []string{}
	for _, c := range central {
		names = append(names, c.Name)
	}
	want := []string{"Ana", "Carla", "Davi"}
	if len(names) != len(want) {
		t.Fatalf("central: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("central[%d]: got %q, want %q", i, names[i], want[i])
		}
	}

	none, _ := store.List(ctx, collaboratorpolicy.Scope{}.Filter())
	if len(none) != 2 {
		t.Errorf("no congregation: expected only the 2 unassigned, got %d", len(none))
	}
}

func TestStore_Delete_Scoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collaboratorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	north := fixtures.CreateCollaborator(ctx, "Bruno", "North")
	central := fixtures.CreateCollaborator(ctx, "Ana", "Central")
	scope := collaboratorpolicy.Scope{Congregation: "Central"}.Filter()

	if err := store.Delete(ctx, north.ID, scope); !apperr.IsNotFound(err) {
		t.Errorf("deleting another congregation's collaborator: expected not found, got %v", err)
	}
	if err := store.Delete(ctx, central.ID, scope); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	n, _ := store.Count(ctx, bson.M{})
	if n != 1 {
		t.Errorf("expected 1 remaining, got %d", n)
	}
}

func TestStore_Delete_LeavesEventWho(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := collaboratorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana := fixtures.CreateCollaborator(ctx, "Ana", "Central")
	ev := fixtures.CreateEvent(ctx, "Street outreach", "Central", testutil.Now())

	if err := store.Delete(ctx, ana.ID, bson.M{}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var got models.Event
	if err := db.Collection("events").FindOne(ctx, bson.M{"_id": ev.ID}).Decode(&got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.Who != ev.Who {
		t.Errorf("who changed: got %q, want %q", got.Who, ev.Who)
	}
}
