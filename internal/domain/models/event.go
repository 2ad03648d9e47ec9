// internal/domain/models/event.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event lifecycle states. Only Planned → Completed is driven by the
// application (by attaching a result); InProgress is accepted when read
// back but never set.
const (
	EventPlanned    = "planned"
	EventInProgress = "in-progress"
	EventCompleted  = "completed"
)

// Event is an outreach activity planned with the 5W2H template.
//
// Who is a comma-joined, order-preserving list of collaborator names. It is
// a historical record, not a live reference: deleting a collaborator never
// rewrites it.
type Event struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	What          string             `bson:"what" json:"what"`
	Why           string             `bson:"why" json:"why"`
	Where         string             `bson:"where" json:"where"`
	When          time.Time          `bson:"when" json:"when"`
	Who           string             `bson:"who" json:"who"`
	How           string             `bson:"how" json:"how"`
	HowMuch       string             `bson:"how_much" json:"howMuch"`
	Congregation  string             `bson:"congregation" json:"congregation"`
	Status        string             `bson:"status" json:"status"`
	Result        *EventResult       `bson:"result,omitempty" json:"result,omitempty"`
	ResultVersion string             `bson:"result_version,omitempty" json:"-"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// IsCompleted reports whether the event has a result attached.
func (e Event) IsCompleted() bool { return e.Status == EventCompleted }

// EventResult holds post-event metrics. It exists only on completed events.
// Contacts live in their own collection and are joined on read using the
// event's ResultVersion.
type EventResult struct {
	ApproachedCount   int       `bson:"approached_count" json:"approachedCount"`
	CollaboratorCount int       `bson:"collaborator_count" json:"collaboratorCount"`
	DecisionsCount    int       `bson:"decisions_count" json:"decisionsCount"`
	Contacts          []Contact `bson:"-" json:"contacts"`
	Notes             string    `bson:"notes" json:"notes"`
	FeedbackPositive  string    `bson:"feedback_positive" json:"feedbackPositive"`
	FeedbackImprove   string    `bson:"feedback_improve" json:"feedbackImprove"`
}

// EventFields are the user-editable 5W2H fields plus the owning congregation.
type EventFields struct {
	What         string
	Why          string
	Where        string
	When         time.Time
	Who          string
	How          string
	HowMuch      string
	Congregation string
}

// WhoNames splits a comma-joined who list into trimmed, non-empty names.
func WhoNames(who string) []string {
	parts := strings.Split(who, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToggleWho adds name to the who list if absent, or removes it if present.
// The order of the remaining names is preserved and new names are appended.
// Names that no longer match any collaborator are kept as they are. A blank
// name, or one containing the separator, leaves the list unchanged.
func ToggleWho(who, name string) string {
	name = strings.TrimSpace(name)
	names := WhoNames(who)
	if name == "" || strings.Contains(name, ",") {
		return strings.Join(names, ", ")
	}
	out := make([]string, 0, len(names)+1)
	found := false
	for _, n := range names {
		if n == name {
			found = true
			continue
		}
		out = append(out, n)
	}
	if !found {
		out = append(out, name)
	}
	return strings.Join(out, ", ")
}
