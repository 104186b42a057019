// Package store provides the concrete implementation of the application
// BirthdayStore port by composing the SQLite Index with the field codec.
// Fields are encrypted before they reach the index and decrypted on the way
// out; the index itself only ever sees ciphertext. External packages should
// construct the store via New and interact through app.BirthdayStore.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/haukened/hearth/internal/app"
	"github.com/haukened/hearth/internal/domain"
)

// Store implements app.BirthdayStore over an Index and a FieldCodec.
type Store struct {
	index Index
	codec FieldCodec
}

// New returns a Store implementation of app.BirthdayStore.
func New(index Index, codec FieldCodec) *Store {
	return &Store{index: index, codec: codec}
}

var _ app.BirthdayStore = (*Store)(nil)

// Create validates, encrypts, and inserts a new record.
func (s *Store) Create(ctx context.Context, name string, birthdate time.Time) (int64, error) {
	encName, encDate, err := s.sealFields(name, birthdate)
	if err != nil {
		return 0, err
	}
	return s.index.Insert(ctx, encName, encDate)
}

// ReadAll decrypts every row. Strict policy: the first field that fails to
// authenticate aborts the whole read; partial or garbled personal data is
// worse than a visible failure.
func (s *Store) ReadAll(ctx context.Context) ([]domain.Birthday, error) {
	rows, err := s.index.SelectAll(ctx)
	if err != nil {
		return nil, err
	}
	birthdays := make([]domain.Birthday, 0, len(rows))
	for _, row := range rows {
		name, err := s.codec.Decrypt(row.Name)
		if err != nil {
			return nil, fmt.Errorf("record %d name: %w", row.ID, err)
		}
		dateStr, err := s.codec.Decrypt(row.Birthdate)
		if err != nil {
			return nil, fmt.Errorf("record %d birthdate: %w", row.ID, err)
		}
		birthdate, err := time.Parse(domain.ISODate, dateStr)
		if err != nil {
			// Decrypted fine but not a date: the row was corrupted before
			// encryption or written by something else. Surface, don't skip.
			return nil, fmt.Errorf("%w: record %d birthdate malformed", domain.ErrStorage, row.ID)
		}
		birthdays = append(birthdays, domain.Birthday{ID: row.ID, Name: name, Birthdate: birthdate})
	}
	return birthdays, nil
}

// Update re-encrypts and overwrites the addressed row.
func (s *Store) Update(ctx context.Context, id int64, name string, birthdate time.Time) error {
	encName, encDate, err := s.sealFields(name, birthdate)
	if err != nil {
		return err
	}
	return s.index.Update(ctx, id, encName, encDate)
}

// Delete removes the row; absent ids are a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.index.Delete(ctx, id)
}

// UpsertByName reads all records and updates the first whose name matches,
// in insertion order; otherwise it creates a new record.
func (s *Store) UpsertByName(ctx context.Context, name string, birthdate time.Time) (int64, error) {
	if err := validateFields(name, birthdate); err != nil {
		return 0, err
	}
	existing, err := s.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, b := range existing {
		if b.Name == name {
			if err := s.Update(ctx, b.ID, name, birthdate); err != nil {
				return 0, err
			}
			return b.ID, nil
		}
	}
	return s.Create(ctx, name, birthdate)
}

// sealFields validates then encrypts both field values.
func (s *Store) sealFields(name string, birthdate time.Time) ([]byte, []byte, error) {
	if err := validateFields(name, birthdate); err != nil {
		return nil, nil, err
	}
	encName, err := s.codec.Encrypt(name)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt name: %w", err)
	}
	encDate, err := s.codec.Encrypt(birthdate.Format(domain.ISODate))
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt birthdate: %w", err)
	}
	return encName, encDate, nil
}

// validateFields rejects structurally invalid input before any encryption.
func validateFields(name string, birthdate time.Time) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	if birthdate.IsZero() {
		return fmt.Errorf("%w: birthdate must be set", domain.ErrValidation)
	}
	return nil
}
