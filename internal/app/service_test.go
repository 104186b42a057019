package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haukened/hearth/internal/domain"
)

// fixedClock implements Clock returning a fixed instant.
type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

// mockStore implements BirthdayStore for tests.
type mockStore struct {
	records []domain.Birthday
	readErr error

	upsertID   int64
	upsertErr  error
	upsertName string
	upsertDate time.Time

	deletedID int64
}

func (m *mockStore) Create(ctx context.Context, name string, birthdate time.Time) (int64, error) {
	_ = ctx
	return 0, errors.New("not used")
}

func (m *mockStore) ReadAll(ctx context.Context) ([]domain.Birthday, error) {
	_ = ctx
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.records, nil
}

func (m *mockStore) Update(ctx context.Context, id int64, name string, birthdate time.Time) error {
	_ = ctx
	return errors.New("not used")
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	_ = ctx
	m.deletedID = id
	return nil
}

func (m *mockStore) UpsertByName(ctx context.Context, name string, birthdate time.Time) (int64, error) {
	_ = ctx
	m.upsertName = name
	m.upsertDate = birthdate
	return m.upsertID, m.upsertErr
}

type mockForecast struct {
	days []ForecastDay
	err  error
}

func (m mockForecast) Fetch(ctx context.Context) ([]ForecastDay, error) {
	_ = ctx
	return m.days, m.err
}

type mockCalendar struct {
	events []domain.Event
	err    error
}

func (m mockCalendar) Events(ctx context.Context) ([]domain.Event, error) {
	_ = ctx
	return m.events, m.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(store BirthdayStore, fc ForecastSource, cal CalendarSource, now time.Time) *Service {
	return &Service{
		Store:         store,
		Forecast:      fc,
		Calendar:      cal,
		Clock:         fixedClock{now: now},
		GarbageLimit:  2,
		BirthdayLimit: 3,
	}
}

func TestDashboardAssembly(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	store := &mockStore{records: []domain.Birthday{
		{ID: 1, Name: "Alex", Birthdate: date(1995, 3, 14)},
		{ID: 2, Name: "Mina", Birthdate: date(1990, 7, 4)},
	}}
	fc := mockForecast{days: []ForecastDay{{Day: "Sun", MaxTemp: "12.5", MinTemp: "3.0", IconID: "2", Rain: "0.4 mm", RainProbability: "20%"}}}
	cal := mockCalendar{events: []domain.Event{
		{Label: "Karton", Kind: domain.OneOff, Date: date(2024, 3, 10)},
		{Label: "Papier", Kind: domain.OneOff, Date: date(2024, 3, 5)},
		{Label: "Glas", Kind: domain.OneOff, Date: date(2024, 3, 12)},
	}}

	svc := newTestService(store, fc, cal, now)
	got, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if got.Date != "Sun, 10.03.2024" {
		t.Fatalf("date mismatch: %q", got.Date)
	}
	if len(got.Forecast) != 1 || got.Forecast[0].Day != "Sun" {
		t.Fatalf("forecast not passed through: %+v", got.Forecast)
	}
	if len(got.GarbageCollections) != 2 {
		t.Fatalf("expected 2 garbage results, got %d", len(got.GarbageCollections))
	}
	if got.GarbageCollections[0].Type != "Karton" || got.GarbageCollections[0].When != "heute" {
		t.Fatalf("first pickup mismatch: %+v", got.GarbageCollections[0])
	}
	if got.GarbageCollections[1].Type != "Glas" || got.GarbageCollections[1].When != "in 2 Tagen" {
		t.Fatalf("second pickup mismatch: %+v", got.GarbageCollections[1])
	}
	if len(got.Birthdays) != 2 {
		t.Fatalf("expected 2 birthdays, got %d", len(got.Birthdays))
	}
	// Alex (Mar 14) is closer than Mina (Jul 4).
	if got.Birthdays[0].Name != "Alex" || got.Birthdays[0].Date != "14.3." {
		t.Fatalf("first birthday mismatch: %+v", got.Birthdays[0])
	}
	if got.Birthdays[1].Name != "Mina" || got.Birthdays[1].Date != "4.7." {
		t.Fatalf("second birthday mismatch: %+v", got.Birthdays[1])
	}
}

func TestDashboardUpstreamFailure(t *testing.T) {
	svc := newTestService(&mockStore{}, mockForecast{err: errors.New("boom")}, mockCalendar{}, time.Now())
	if _, err := svc.Dashboard(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestDashboardDecryptFailurePropagates(t *testing.T) {
	svc := newTestService(&mockStore{readErr: domain.ErrDecrypt}, mockForecast{}, mockCalendar{}, time.Now())
	if _, err := svc.Dashboard(context.Background()); !errors.Is(err, domain.ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
}

func TestAddBirthday(t *testing.T) {
	store := &mockStore{upsertID: 7}
	svc := newTestService(store, mockForecast{}, mockCalendar{}, time.Now())

	id, err := svc.AddBirthday(context.Background(), "Mina", "04.07.1990")
	if err != nil {
		t.Fatalf("AddBirthday: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected id 7, got %d", id)
	}
	if store.upsertName != "Mina" {
		t.Fatalf("name not passed: %q", store.upsertName)
	}
	if !store.upsertDate.Equal(date(1990, 7, 4)) {
		t.Fatalf("date not parsed: %v", store.upsertDate)
	}
}

func TestAddBirthdayValidation(t *testing.T) {
	svc := newTestService(&mockStore{}, mockForecast{}, mockCalendar{}, time.Now())
	ctx := context.Background()

	if _, err := svc.AddBirthday(ctx, "Mina", "1990-07-04"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ISO date must be rejected at the boundary, got %v", err)
	}
	if _, err := svc.AddBirthday(ctx, "Mina", "31.02.1990"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("impossible date must be rejected, got %v", err)
	}
	if _, err := svc.AddBirthday(ctx, "", "04.07.1990"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty name must be rejected, got %v", err)
	}
}

func TestTodaysBirthdays(t *testing.T) {
	now := date(2024, 7, 4)
	store := &mockStore{records: []domain.Birthday{
		{ID: 1, Name: "Mina", Birthdate: date(1990, 7, 4)},
		{ID: 2, Name: "Alex", Birthdate: date(1995, 3, 14)},
		{ID: 3, Name: "Kim", Birthdate: date(2001, 7, 4)},
	}}
	svc := newTestService(store, mockForecast{}, mockCalendar{}, now)

	got, err := svc.TodaysBirthdays(context.Background())
	if err != nil {
		t.Fatalf("TodaysBirthdays: %v", err)
	}
	if len(got) != 2 || got[0] != "Mina" || got[1] != "Kim" {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestRemoveBirthday(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, mockForecast{}, mockCalendar{}, time.Now())
	if err := svc.RemoveBirthday(context.Background(), 42); err != nil {
		t.Fatalf("RemoveBirthday: %v", err)
	}
	if store.deletedID != 42 {
		t.Fatalf("delete not delegated, got id %d", store.deletedID)
	}
}
