// internal/app/features/events/result.go
package events

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/policy/eventpolicy"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/metrics"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.uber.org/zap"
)

type contactInput struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	SpiritualStatus string `json:"spiritualStatus"`
	Observation     string `json:"observation"`
}

// Counts are lenient: a number or numeric string, anything else is 0.
type resultInput struct {
	ApproachedCount   inputval.Count `json:"approachedCount" validate:"gte=0" label:"People approached"`
	CollaboratorCount inputval.Count `json:"collaboratorCount" validate:"gte=0" label:"Collaborators"`
	DecisionsCount    inputval.Count `json:"decisionsCount" validate:"gte=0" label:"Decisions"`
	Contacts          []contactInput `json:"contacts" validate:"max=500" label:"Contacts"`
	Notes             string         `json:"notes"`
	FeedbackPositive  string         `json:"feedbackPositive"`
	FeedbackImprove   string         `json:"feedbackImprove"`
}

func (in resultInput) result() models.EventResult {
	res := models.EventResult{
		ApproachedCount:   int(in.ApproachedCount),
		CollaboratorCount: int(in.CollaboratorCount),
		DecisionsCount:    int(in.DecisionsCount),
		Contacts:          make([]models.Contact, 0, len(in.Contacts)),
		Notes:             in.Notes,
		FeedbackPositive:  in.FeedbackPositive,
		FeedbackImprove:   in.FeedbackImprove,
	}
	for _, c := range in.Contacts {
		res.Contacts = append(res.Contacts, models.Contact{
			Name:            c.Name,
			Phone:           c.Phone,
			Address:         c.Address,
			SpiritualStatus: c.SpiritualStatus,
			Observation:     c.Observation,
		})
	}
	return res
}

// HandleAttachResult handles POST /api/events/{id}/result. The event becomes
// completed and its contacts are replaced by the submitted list.
func (h *Handler) HandleAttachResult(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "attach result", err)
		return
	}
	filter, ok := eventpolicy.FromRequest(r).Filter()
	if !ok {
		h.ErrLog.Write(w, r, "attach result", apperr.NotFound("events.attach_result"))
		return
	}

	var in resultInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "attach result: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "attach result: validate", err)
		return
	}
	res := in.result()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, _, actor, _ := authz.UserCtx(r)
	e, err := h.Store.AttachResult(ctx, id, res, filter)
	if err != nil {
		var pe *apperr.PartialCompletionError
		if errors.As(err, &pe) {
			metrics.RecordResult(metrics.ResultPartial, res.DecisionsCount)
			h.AuditLog.EventResultIncomplete(ctx, r, actor, id, pe.Failed)
		} else if !apperr.IsValidation(err) && !apperr.IsNotFound(err) {
			metrics.RecordResult(metrics.ResultFailed, 0)
		}
		h.ErrLog.Write(w, r, "attach result", err)
		return
	}

	metrics.RecordResult(metrics.ResultOK, res.DecisionsCount)
	h.AuditLog.EventResultAttached(ctx, r, actor, id, e.Congregation, len(res.Contacts), res.DecisionsCount)
	h.Log.Info("event result attached",
		zap.String("event_id", id.Hex()),
		zap.Int("contacts", len(res.Contacts)),
		zap.Int("decisions", res.DecisionsCount))

	respond.OK(w, e)
}
