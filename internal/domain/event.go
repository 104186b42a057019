// Package domain event.go defines dated events and the upcoming-event ranking.
package domain

import (
	"fmt"
	"sort"
	"time"
)

// EventKind distinguishes one-shot dates from annually recurring ones.
type EventKind int

const (
	// OneOff events happen on exactly one calendar date (garbage pickups).
	OneOff EventKind = iota
	// Recurring events repeat every year on the same month and day
	// (birthdays); the year of Date is ignored for ranking.
	Recurring
)

// Event is a ranking input. It carries no state and is never persisted.
type Event struct {
	Label string
	Kind  EventKind
	Date  time.Time
}

// Ranked pairs an event with its distance from the reference instant and a
// human-readable relative label. Constructed fresh per Rank call.
type Ranked struct {
	Event Event
	Days  int
	When  string
}

// annualModulus is the fixed divisor used for recurring events. 364 is not a
// calendar year; near leap-day boundaries the day count can be off by one or
// two versus true anniversary arithmetic. Kept for parity with the behavior
// this service replaces.
const annualModulus = 364

// Rank computes each event's next occurrence relative to now, drops one-off
// events that are strictly in the past, sorts ascending by days-until, and
// truncates to limit. The sort is stable: ties keep input order.
func Rank(events []Event, now time.Time, limit int) []Ranked {
	ranked := make([]Ranked, 0, len(events))
	for _, ev := range events {
		days, ok := ev.daysUntil(now)
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked{Event: ev, Days: days, When: RelativeLabel(days)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Days < ranked[j].Days })
	if limit < 0 {
		limit = 0
	}
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// daysUntil returns the whole days until the event's next occurrence. The
// second return is false when the event is not eligible (one-off in the past).
func (ev Event) daysUntil(now time.Time) (int, bool) {
	switch ev.Kind {
	case Recurring:
		return ev.daysUntilAnnual(now), true
	default:
		d := wholeDaysBetween(now, ev.Date)
		if d < 0 {
			return 0, false
		}
		return d, true
	}
}

// daysUntilAnnual pairs the event's month and day with the year after now's
// and reduces the distance mod annualModulus, always yielding [0, 363]. A
// same-day recurring event spans a full year to its candidate and so ranks
// as 1 or 2 rather than 0, another facet of the 364 quirk.
func (ev Event) daysUntilAnnual(now time.Time) int {
	candidate := time.Date(now.Year()+1, ev.Date.Month(), ev.Date.Day(), 0, 0, 0, 0, time.UTC)
	return wholeDaysBetween(now, candidate) % annualModulus
}

// wholeDaysBetween counts calendar days from a's date to b's date, ignoring
// time of day. An event later today counts as 0: the begun day rounds up.
func wholeDaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

// RelativeLabel renders a day distance in one of three buckets:
// today, singular, plural.
func RelativeLabel(days int) string {
	switch {
	case days == 0:
		return "heute"
	case days == 1:
		return "in 1 Tag"
	default:
		return fmt.Sprintf("in %d Tagen", days)
	}
}
