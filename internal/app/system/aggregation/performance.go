// Package aggregation derives dashboard statistics from events and
// collaborators. Everything here is a pure function over values already
// loaded (and visibility-filtered) by the stores.
package aggregation

import (
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/missio/internal/domain/models"
)

// Unspecified is the bucket for records with a blank congregation.
const Unspecified = "Unspecified"

// Entry is one bar of a ranked chart. Ratio is Value divided by the largest
// value in its list, floored at 1, so it is always within [0, 1].
type Entry struct {
	Name  string  `json:"name"`
	Value int     `json:"value"`
	Ratio float64 `json:"ratio"`
}

// Performance holds the three ranked per-congregation metrics.
type Performance struct {
	Period        Period  `json:"period"`
	Events        []Entry `json:"eventsByCongregation"`
	Decisions     []Entry `json:"decisionsByCongregation"`
	Collaborators []Entry `json:"collaboratorsByCongregation"`
	MaxEvents     int     `json:"maxEvents"`
	MaxDecisions  int     `json:"maxDecisions"`
	MaxCollabs    int     `json:"maxCollaborators"`
}

// ComputePerformance counts events and decisions per congregation within the
// period, and collaborator headcount per congregation over the whole roster.
// Every known congregation appears in each list even with no activity.
func ComputePerformance(events []models.Event, collaborators []models.Collaborator, congregations []models.Congregation, period Period, now time.Time) Performance {
	eventsBy := make(map[string]int, len(congregations))
	decisionsBy := make(map[string]int, len(congregations))
	collabsBy := make(map[string]int, len(congregations))
	for _, c := range congregations {
		eventsBy[c.Name] = 0
		decisionsBy[c.Name] = 0
		collabsBy[c.Name] = 0
	}

	for _, e := range events {
		if !period.Includes(e.When, now) {
			continue
		}
		name := bucket(e.Congregation)
		eventsBy[name]++
		if e.IsCompleted() && e.Result != nil {
			decisionsBy[name] += e.Result.DecisionsCount
		}
	}

	// Headcount is roster strength, so the period does not apply.
	for _, c := range collaborators {
		collabsBy[bucket(c.Congregation)]++
	}

	p := Performance{
		Period:        period,
		Events:        Rank(eventsBy),
		Decisions:     Rank(decisionsBy),
		Collaborators: Rank(collabsBy),
	}
	p.MaxEvents = maxValue(p.Events)
	p.MaxDecisions = maxValue(p.Decisions)
	p.MaxCollabs = maxValue(p.Collaborators)
	return p
}

// Rank converts counts to entries sorted by value descending, then name
// ascending, and fills in each entry's Ratio.
func Rank(counts map[string]int) []Entry {
	out := make([]Entry, 0, len(counts))
	for name, v := range counts {
		out = append(out, Entry{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	top := maxValue(out)
	for i := range out {
		out[i].Ratio = float64(out[i].Value) / float64(top)
	}
	return out
}

func maxValue(entries []Entry) int {
	top := 1
	for _, e := range entries {
		if e.Value > top {
			top = e.Value
		}
	}
	return top
}

func bucket(congregation string) string {
	if strings.TrimSpace(congregation) == "" {
		return Unspecified
	}
	return congregation
}
