// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventView is an audit event with actor and subject e-mails resolved.
type EventView struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	Congregation  string            `json:"congregation,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	UserEmail     string            `json:"userEmail,omitempty"`
	ActorID       string            `json:"actorId,omitempty"`
	ActorEmail    string            `json:"actorEmail,omitempty"`
	SubjectID     string            `json:"subjectId,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events []EventView `json:"events"`
	Total  int64       `json:"total"`
	Limit  int64       `json:"limit"`
	Offset int64       `json:"offset"`
}

// ServeList handles GET /api/audit.
//
// Query: category, event_type, user_id, subject_id, start_date and end_date
// (YYYY-MM-DD, end inclusive), limit (default 50, max 200), offset.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Write(w, r, "audit: parse filter", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, total, filter, err := h.Events.Page(ctx, filter)
	if err != nil {
		h.ErrLog.Write(w, r, "audit: list", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(events)*2)
	seen := make(map[primitive.ObjectID]struct{})
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.UserID, e.ActorID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	emails, err := h.Profiles.EmailsByIDs(ctx, ids)
	if err != nil {
		// Names are cosmetic; list the events without them.
		h.Log.Warn("failed to resolve audit e-mails", zap.Error(err))
		emails = nil
	}

	out := make([]EventView, 0, len(events))
	for _, e := range events {
		v := EventView{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			Congregation:  e.Congregation,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.UserID != nil {
			v.UserID = e.UserID.Hex()
			v.UserEmail = emails[*e.UserID]
		}
		if e.ActorID != nil {
			v.ActorID = e.ActorID.Hex()
			v.ActorEmail = emails[*e.ActorID]
		}
		if e.SubjectID != nil {
			v.SubjectID = e.SubjectID.Hex()
		}
		out = append(out, v)
	}

	respond.OK(w, listResponse{Events: out, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	q := r.URL.Query()
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
	}

	switch f.Category {
	case "", audit.CategoryAuth, audit.CategoryAdmin:
	default:
		return f, apperr.Invalid("category", "must be auth or admin")
	}

	var err error
	if f.UserID, err = objectIDParam(q.Get("user_id"), "user_id"); err != nil {
		return f, err
	}
	if f.SubjectID, err = objectIDParam(q.Get("subject_id"), "subject_id"); err != nil {
		return f, err
	}
	if f.Since, err = dateParam(q.Get("start_date"), "start_date"); err != nil {
		return f, err
	}
	if f.Until, err = dateParam(q.Get("end_date"), "end_date"); err != nil {
		return f, err
	}
	if !f.Until.IsZero() {
		f.Until = f.Until.AddDate(0, 0, 1)
	}
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return f, apperr.Invalid("limit", "must be a positive number")
		}
		f.Limit = n
	}
	if s := strings.TrimSpace(q.Get("offset")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return f, apperr.Invalid("offset", "must be zero or more")
		}
		f.Offset = n
	}
	return f, nil
}

func objectIDParam(s, field string) (*primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, apperr.Invalid(field, "is not a valid id")
	}
	return &id, nil
}

func dateParam(s, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Invalid(field, "must be YYYY-MM-DD")
	}
	return t, nil
}
