// internal/app/system/auditlog/logger.go

// Package auditlog records security and data-change events to the
// audit_events collection and to the structured log.
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mode selects where a category's events go.
type Mode string

const (
	ModeAll Mode = "all" // MongoDB and zap
	ModeDB  Mode = "db"
	ModeLog Mode = "log"
	ModeOff Mode = "off"
)

func (m Mode) toDB() bool  { return m == ModeAll || m == ModeDB }
func (m Mode) toLog() bool { return m == ModeAll || m == ModeLog }

// Config holds the mode per category as read from configuration
// (audit_log_auth, audit_log_admin). Unknown values behave as "all".
type Config struct {
	Auth  string
	Admin string
}

// Logger writes audit events. A nil *Logger drops everything, so handlers
// built without one (tests) need no guards.
type Logger struct {
	store *audit.Store
	log   *zap.Logger
	modes map[string]Mode
}

func New(store *audit.Store, log *zap.Logger, cfg Config) *Logger {
	return &Logger{
		store: store,
		log:   log,
		modes: map[string]Mode{
			audit.CategoryAuth:  parseMode(cfg.Auth),
			audit.CategoryAdmin: parseMode(cfg.Admin),
		},
	}
}

func parseMode(s string) Mode {
	switch m := Mode(s); m {
	case ModeDB, ModeLog, ModeOff:
		return m
	}
	return ModeAll
}

// Log stores and/or logs e according to its category's mode.
func (l *Logger) Log(ctx context.Context, e audit.Event) {
	if l == nil {
		return
	}
	mode, ok := l.modes[e.Category]
	if !ok {
		mode = ModeAll
	}
	if mode.toLog() {
		l.write(e)
	}
	if mode.toDB() {
		if err := l.store.Log(ctx, e); err != nil {
			l.log.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", e.EventType))
		}
	}
}

// record fills the request metadata and logs e.
func (l *Logger) record(ctx context.Context, r *http.Request, e audit.Event) {
	if l == nil {
		return
	}
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	l.Log(ctx, e)
}

func (l *Logger) write(e audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	for key, id := range map[string]*primitive.ObjectID{
		"user_id":    e.UserID,
		"actor_id":   e.ActorID,
		"subject_id": e.SubjectID,
	} {
		if id != nil {
			fields = append(fields, zap.String(key, id.Hex()))
		}
	}
	if e.Congregation != "" {
		fields = append(fields, zap.String("congregation", e.Congregation))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}

	if e.Success {
		l.log.Info("audit event", fields...)
	} else {
		l.log.Warn("audit event", fields...)
	}
}

func auth(eventType string, userID *primitive.ObjectID) audit.Event {
	return audit.Event{Category: audit.CategoryAuth, EventType: eventType, UserID: userID, Success: true}
}

func admin(eventType string, actorID primitive.ObjectID) audit.Event {
	return audit.Event{Category: audit.CategoryAdmin, EventType: eventType, ActorID: &actorID, Success: true}
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := auth(audit.EventLoginSuccess, &userID)
	e.Details = map[string]string{"email": email}
	l.record(ctx, r, e)
}

// LoginFailedUserNotFound records a sign-in for an e-mail with no profile.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := auth(audit.EventLoginFailedUserNotFound, nil)
	e.Success = false
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.record(ctx, r, e)
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := auth(audit.EventLoginFailedWrongPassword, &userID)
	e.Success = false
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.record(ctx, r, e)
}

// Logout takes the hex user ID from the session; an unparsable ID is
// recorded without a user.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	var uid *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		uid = &oid
	}
	l.record(ctx, r, auth(audit.EventLogout, uid))
}

func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, congregation string) {
	e := auth(audit.EventRegistered, &userID)
	e.Congregation = congregation
	e.Details = map[string]string{"email": email}
	l.record(ctx, r, e)
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.record(ctx, r, auth(audit.EventPasswordChanged, &userID))
}

// UserStatusChanged records an approval transition of target by actor.
func (l *Logger) UserStatusChanged(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, from, to string) {
	e := admin(audit.EventUserStatusChanged, actorID)
	e.UserID = &targetID
	e.Details = map[string]string{"from": from, "to": to}
	l.record(ctx, r, e)
}

// AdminSeeded records the startup creation or promotion of the configured
// admin. There is no request and no actor.
func (l *Logger) AdminSeeded(ctx context.Context, userID primitive.ObjectID, email string, created bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAdminSeeded,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email, "created": strconv.FormatBool(created)},
	})
}

// RecordChanged records a create, update or delete of a congregation,
// department, collaborator or event. name is omitted from details when blank.
func (l *Logger) RecordChanged(ctx context.Context, r *http.Request, actorID primitive.ObjectID, eventType string, recordID primitive.ObjectID, name, congregation string) {
	e := admin(eventType, actorID)
	e.SubjectID = &recordID
	e.Congregation = congregation
	if name != "" {
		e.Details = map[string]string{"name": name}
	}
	l.record(ctx, r, e)
}

func (l *Logger) EventResultAttached(ctx context.Context, r *http.Request, actorID, eventID primitive.ObjectID, congregation string, contacts, decisions int) {
	e := admin(audit.EventEventResultAttached, actorID)
	e.SubjectID = &eventID
	e.Congregation = congregation
	e.Details = map[string]string{
		"contacts":  strconv.Itoa(contacts),
		"decisions": strconv.Itoa(decisions),
	}
	l.record(ctx, r, e)
}

// EventResultIncomplete records a result submission that committed but
// failed a later cleanup step.
func (l *Logger) EventResultIncomplete(ctx context.Context, r *http.Request, actorID, eventID primitive.ObjectID, failedStep string) {
	e := admin(audit.EventEventResultIncomplete, actorID)
	e.SubjectID = &eventID
	e.Success = false
	e.FailureReason = failedStep
	l.record(ctx, r, e)
}
