// Package sqlite provides the SQLite-backed implementation of the
// store.Index port persisting encrypted birthday records.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haukened/hearth/internal/domain"
	"github.com/haukened/hearth/internal/store"

	// database/sql SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

var _ store.Index = (*Index)(nil)

// Index implements store.Index using SQLite (via database/sql). It is safe
// for concurrent use; database/sql serializes access to the underlying
// connection. Each statement is its own implicit transaction, so writes are
// atomic to callers.
type Index struct{ db *sql.DB }

// New constructs an Index, creating the schema if absent. Safe to call on
// every process start; an existing table is left untouched.
func New(db *sql.DB) (*Index, error) {
	ix := &Index{db: db}
	if err := ix.init(); err != nil {
		return nil, err
	}
	return ix, nil
}

// init lazily creates the BIRTHDAY table. AUTOINCREMENT guarantees ids are
// monotonically increasing and never reused, even after deletes.
func (i *Index) init() error {
	schema := `CREATE TABLE IF NOT EXISTS BIRTHDAY (
id INTEGER PRIMARY KEY AUTOINCREMENT,
name BLOB NOT NULL,
birthdate BLOB NOT NULL
);`
	if _, err := i.db.Exec(schema); err != nil {
		return fmt.Errorf("%w: init schema: %v", domain.ErrStorage, err)
	}
	return nil
}

// Insert appends a new encrypted row and returns its assigned id.
func (i *Index) Insert(ctx context.Context, name, birthdate []byte) (int64, error) {
	const q = `INSERT INTO BIRTHDAY (name, birthdate) VALUES (?, ?)`
	res, err := i.db.ExecContext(ctx, q, name, birthdate)
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %v", domain.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", domain.ErrStorage, err)
	}
	return id, nil
}

// SelectAll returns every row ordered by id (insertion order).
func (i *Index) SelectAll(ctx context.Context) ([]store.Row, error) {
	const q = `SELECT id, name, birthdate FROM BIRTHDAY ORDER BY id`
	rows, err := i.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: select: %v", domain.ErrStorage, err)
	}
	defer rows.Close()
	var out []store.Row
	for rows.Next() {
		var r store.Row
		if err = rows.Scan(&r.ID, &r.Name, &r.Birthdate); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrStorage, err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", domain.ErrStorage, err)
	}
	return out, nil
}

// Update overwrites both field blobs of the addressed row.
func (i *Index) Update(ctx context.Context, id int64, name, birthdate []byte) error {
	const q = `UPDATE BIRTHDAY SET name = ?, birthdate = ? WHERE id = ?`
	res, err := i.db.ExecContext(ctx, q, name, birthdate, id)
	if err != nil {
		return fmt.Errorf("%w: update: %v", domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", domain.ErrStorage, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the row. Idempotent: a missing id is not an error.
func (i *Index) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM BIRTHDAY WHERE id = ?`
	if _, err := i.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("%w: delete: %v", domain.ErrStorage, err)
	}
	return nil
}
