// Package reportpolicy provides authorization policies for report access.
//
// Authorization rules:
//   - Admins can view monthly reports for all congregations and the
//     performance indicators
//   - Approved users can view monthly reports for their own congregation only
//   - Approved users without a congregation get an empty report
//   - Nobody but admins can view the performance indicators
package reportpolicy

import (
	"net/http"
	"time"

	"github.com/dalemusser/missio/internal/app/policy/eventpolicy"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ReportScope represents the scope of data a user can access in reports.
type ReportScope struct {
	Events eventpolicy.Scope
}

// CanViewMonthlyReport determines what scope of events the current user can
// access in the monthly report.
func CanViewMonthlyReport(r *http.Request) ReportScope {
	return ReportScope{Events: eventpolicy.FromRequest(r)}
}

// CanViewIndicators reports whether the current user may see the
// per-congregation performance indicators.
func CanViewIndicators(r *http.Request) bool {
	v, ok := authz.FromRequest(r)
	return ok && v.IsAdmin() && v.IsApproved()
}

// MonthFilter selects completed events with when in [start, end) inside the
// scope. ok is false when nothing is visible.
func (s ReportScope) MonthFilter(start, end time.Time) (filter bson.M, ok bool) {
	f, ok := s.Events.Filter()
	if !ok {
		return nil, false
	}
	f["status"] = models.EventCompleted
	f["result"] = bson.M{"$exists": true}
	f["when"] = bson.M{"$gte": start, "$lt": end}
	return f, true
}
