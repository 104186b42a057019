// Package app contains the application orchestration layer for Hearth. It
// wires domain ranking and validation with the injected ports without
// performing any I/O itself.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haukened/hearth/internal/domain"
)

// ErrUpstream indicates the weather provider could not be reached or
// returned an unusable response.
var ErrUpstream = errors.New("upstream fetch failed")

// dashboardDateFormat renders the reference date, e.g. "Sun, 10.03.2024".
const dashboardDateFormat = "Mon, 02.01.2006"

// birthdayDateFormat renders a birthday as day.month. without the year.
func birthdayDateFormat(t time.Time) string {
	return fmt.Sprintf("%d.%d.", t.Day(), int(t.Month()))
}

// Service orchestrates the dashboard assembly and birthday use-cases using
// the injected store, sources, and clock.
type Service struct {
	Store         BirthdayStore
	Forecast      ForecastSource
	Calendar      CalendarSource
	Clock         Clock
	GarbageLimit  int // bounded top-K for garbage pickups
	BirthdayLimit int // bounded top-K for upcoming birthdays
}

// Dashboard is the outward response payload.
type Dashboard struct {
	Date               string          `json:"date"`
	Forecast           []ForecastDay   `json:"forecast"`
	GarbageCollections []GarbageResult `json:"garbage_collections"`
	Birthdays          []UpcomingBday  `json:"birthdays"`
}

// GarbageResult is one upcoming pickup with its relative label.
type GarbageResult struct {
	Type string `json:"type"`
	When string `json:"when"`
}

// UpcomingBday is one upcoming birthday; Date is day.month. without a year.
type UpcomingBday struct {
	Name string `json:"name"`
	Date string `json:"date"`
	When string `json:"when"`
}

// Dashboard assembles weather, garbage pickups, and upcoming birthdays into
// one payload relative to the clock's current instant.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.Clock.Now()

	forecast, err := s.Forecast.Fetch(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	garbage, err := s.upcomingGarbage(ctx, now)
	if err != nil {
		return Dashboard{}, err
	}

	birthdays, err := s.upcomingBirthdays(ctx, now)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Date:               now.Format(dashboardDateFormat),
		Forecast:           forecast,
		GarbageCollections: garbage,
		Birthdays:          birthdays,
	}, nil
}

// upcomingGarbage ranks the calendar's one-off events.
func (s *Service) upcomingGarbage(ctx context.Context, now time.Time) ([]GarbageResult, error) {
	events, err := s.Calendar.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	ranked := domain.Rank(events, now, s.GarbageLimit)
	out := make([]GarbageResult, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, GarbageResult{Type: r.Event.Label, When: r.When})
	}
	return out, nil
}

// upcomingBirthdays decrypts the record set and ranks it as recurring events.
func (s *Service) upcomingBirthdays(ctx context.Context, now time.Time) ([]UpcomingBday, error) {
	records, err := s.Store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(records))
	for _, b := range records {
		events = append(events, domain.Event{Label: b.Name, Kind: domain.Recurring, Date: b.Birthdate})
	}
	ranked := domain.Rank(events, now, s.BirthdayLimit)
	out := make([]UpcomingBday, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, UpcomingBday{
			Name: r.Event.Label,
			Date: birthdayDateFormat(r.Event.Date),
			When: r.When,
		})
	}
	return out, nil
}

// AddBirthday validates boundary input (dd.mm.yyyy date, bounded name) and
// upserts by name: an existing person's birthdate is corrected in place, an
// unknown name becomes a new record.
func (s *Service) AddBirthday(ctx context.Context, name, birthdate string) (int64, error) {
	if err := domain.ValidateName(name); err != nil {
		return 0, err
	}
	parsed, err := time.Parse("02.01.2006", birthdate)
	if err != nil {
		return 0, fmt.Errorf("%w: birthdate %q is not a dd.mm.yyyy date", domain.ErrValidation, birthdate)
	}
	return s.Store.UpsertByName(ctx, name, parsed)
}

// ListBirthdays returns all decrypted records.
func (s *Service) ListBirthdays(ctx context.Context) ([]domain.Birthday, error) {
	return s.Store.ReadAll(ctx)
}

// RemoveBirthday deletes a record; absent ids are a no-op.
func (s *Service) RemoveBirthday(ctx context.Context, id int64) error {
	return s.Store.Delete(ctx, id)
}

// TodaysBirthdays returns the names whose month and day match the current
// date. Used by the announcer; deliberately not routed through Rank, whose
// 364-modulus never yields zero for a same-day recurring event.
func (s *Service) TodaysBirthdays(ctx context.Context) ([]string, error) {
	records, err := s.Store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	var names []string
	for _, b := range records {
		if b.Birthdate.Month() == now.Month() && b.Birthdate.Day() == now.Day() {
			names = append(names, b.Name)
		}
	}
	return names, nil
}
