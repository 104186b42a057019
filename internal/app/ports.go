// Package app defines the application layer "ports" (interfaces) and simple
// data contracts that the core use-cases of Hearth depend upon. It follows a
// hexagonal (ports & adapters) design: this package declares what the core
// needs, while adapter packages (SQLite record store, weather client, ICS
// reader, HTTP layer) provide concrete implementations. No I/O, SQL, or
// network concerns belong here.
package app

import (
	"context"
	"time"

	"github.com/haukened/hearth/internal/domain"
)

// Clock abstracts time to enable deterministic testing of the ranking logic.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time
}

// BirthdayStore is the storage port for encrypted birthday records.
// Implementations persist only ciphertext; all values crossing this
// interface are plaintext. Reads are strict: if any stored field fails to
// decrypt the whole read fails with domain.ErrDecrypt rather than
// returning partial results.
type BirthdayStore interface {
	// Create encrypts the fields and appends a new record, returning the
	// store-assigned id. The write is durable when the call returns.
	Create(ctx context.Context, name string, birthdate time.Time) (int64, error)

	// ReadAll returns every record with decrypted fields, in insertion order.
	ReadAll(ctx context.Context) ([]domain.Birthday, error)

	// Update re-encrypts and overwrites the addressed record's fields.
	// Returns domain.ErrNotFound if the id does not exist.
	Update(ctx context.Context, id int64, name string, birthdate time.Time) error

	// Delete removes the record. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id int64) error

	// UpsertByName updates the first record (insertion order) whose
	// decrypted name equals name, or creates a new record when none
	// matches. Returns the id of the affected record.
	UpsertByName(ctx context.Context, name string, birthdate time.Time) (int64, error)
}

// ForecastDay is one normalized day of the weather forecast, already
// rendered for the dashboard payload.
type ForecastDay struct {
	Day             string `json:"day"`
	MaxTemp         string `json:"max_temp"`
	MinTemp         string `json:"min_temp"`
	IconID          string `json:"icon_id"`
	Rain            string `json:"rain"`
	RainProbability string `json:"rain_probability"`
}

// ForecastSource is the weather provider port (live API client or a local
// mock file in development).
type ForecastSource interface {
	Fetch(ctx context.Context) ([]ForecastDay, error)
}

// CalendarSource supplies one-off events parsed from the garbage-collection
// calendar file. Labels arrive already stripped of their category prefix.
type CalendarSource interface {
	Events(ctx context.Context) ([]domain.Event, error)
}
