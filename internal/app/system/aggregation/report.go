package aggregation

import (
	"sort"
	"time"

	"github.com/dalemusser/missio/internal/domain/models"
)

// Totals is the summary row of a monthly report.
type Totals struct {
	Events        int `json:"events"`
	Decisions     int `json:"decisions"`
	Collaborators int `json:"collaborators"`
	Approached    int `json:"approached"`
}

// MonthlyReport is the set of completed events in a calendar month.
type MonthlyReport struct {
	Month  string         `json:"month"`
	Events []models.Event `json:"events"`
	Totals Totals         `json:"totals"`
}

// ComputeMonthlyReport keeps completed events with a result whose when falls
// in month, sorted by when ascending, and sums their metrics. Visibility
// (own congregation for non-admins) is applied by the caller's query.
func ComputeMonthlyReport(events []models.Event, month Month) MonthlyReport {
	rep := MonthlyReport{Month: month.String(), Events: []models.Event{}}
	for _, e := range events {
		if !e.IsCompleted() || e.Result == nil {
			continue
		}
		if !month.Contains(e.When) {
			continue
		}
		rep.Events = append(rep.Events, e)
	}
	sort.SliceStable(rep.Events, func(i, j int) bool {
		return rep.Events[i].When.Before(rep.Events[j].When)
	})
	for _, e := range rep.Events {
		rep.Totals.Events++
		rep.Totals.Decisions += e.Result.DecisionsCount
		rep.Totals.Collaborators += e.Result.CollaboratorCount
		rep.Totals.Approached += e.Result.ApproachedCount
	}
	return rep
}

// Summary backs the dashboard cards.
type Summary struct {
	TotalEvents     int            `json:"totalEvents"`
	TotalVolunteers int            `json:"totalVolunteers"`
	SoulsReached    int            `json:"soulsReached"`
	NextEvent       *models.Event  `json:"nextEvent,omitempty"`
	Events          []models.Event `json:"events"`
}

// ComputeSummary derives the dashboard from the visible events and the number
// of visible collaborators.
// Completed events are omitted from Events unless includeCompleted is set.
// NextEvent is the earliest non-completed event at or after now.
func ComputeSummary(events []models.Event, volunteers int, includeCompleted bool, now time.Time) Summary {
	s := Summary{
		TotalEvents:     len(events),
		TotalVolunteers: volunteers,
		Events:          []models.Event{},
	}
	for i, e := range events {
		if e.IsCompleted() {
			if e.Result != nil {
				s.SoulsReached += e.Result.DecisionsCount
			}
		} else if !e.When.Before(now) {
			if s.NextEvent == nil || e.When.Before(s.NextEvent.When) {
				s.NextEvent = &events[i]
			}
		}
		if includeCompleted || !e.IsCompleted() {
			s.Events = append(s.Events, e)
		}
	}
	return s
}
