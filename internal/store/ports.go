// Package store ports.go defines the internal persistence port used by the
// higher-level BirthdayStore implementation. The port isolates the concrete
// SQLite adapter so it can be tested and evolved independently. Callers
// outside this package interact only with the app.BirthdayStore
// implementation, not these internals.
package store

import "context"

// Row is a persisted record as stored: the id plus the two encrypted field
// blobs. Plaintext never appears at this layer.
type Row struct {
	ID        int64
	Name      []byte
	Birthdate []byte
}

// Index abstracts the raw table operations (backed by SQLite). Ids are
// assigned by the index on insert, monotonically increasing and never
// reused.
type Index interface {
	Insert(ctx context.Context, name, birthdate []byte) (int64, error)
	// SelectAll returns all rows ordered by id, which is insertion order.
	SelectAll(ctx context.Context) ([]Row, error)
	// Update overwrites both field blobs; domain.ErrNotFound if id is absent.
	Update(ctx context.Context, id int64, name, birthdate []byte) error
	// Delete removes the row; deleting an absent id is not an error.
	Delete(ctx context.Context, id int64) error
}

// FieldCodec is the encryption boundary for individual field values.
// Satisfied by *crypt.Codec.
type FieldCodec interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(box []byte) (string, error)
}
