package media

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"
)

// SQLiteBackend keeps media as blobs in the site database.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend creates the media table on db if needed.
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS media (
    name TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    size INTEGER NOT NULL,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    uploaded_at TEXT NOT NULL,
    data BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_uploaded ON media(uploaded_at);
`)
	if err != nil {
		return nil, fmt.Errorf("media schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Put stores data under obj.Name, replacing any previous blob.
func (b *SQLiteBackend) Put(ctx context.Context, obj Object, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
INSERT OR REPLACE INTO media (name, content_type, size, width, height, uploaded_at, data)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		obj.Name, obj.ContentType, len(data), obj.Width, obj.Height,
		obj.UploadedAt.UTC().Format(time.RFC3339), data)
	if err != nil {
		return fmt.Errorf("media put %s: %w", obj.Name, err)
	}
	return nil
}

// Open returns a reader over the stored blob.
func (b *SQLiteBackend) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	var (
		obj      Object
		uploaded string
		data     []byte
	)
	err := b.db.QueryRowContext(ctx, `
SELECT name, content_type, size, width, height, uploaded_at, data
FROM media WHERE name = ?`, name).
		Scan(&obj.Name, &obj.ContentType, &obj.Size, &obj.Width, &obj.Height, &uploaded, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Object{}, ErrNotFound
	}
	if err != nil {
		return nil, Object{}, fmt.Errorf("media open %s: %w", name, err)
	}
	obj.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
	return io.NopCloser(bytes.NewReader(data)), obj, nil
}

// Delete removes the blob, returning ErrNotFound when it is absent.
func (b *SQLiteBackend) Delete(ctx context.Context, name string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM media WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("media delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns objects newest first.
func (b *SQLiteBackend) List(ctx context.Context) ([]Object, error) {
	rows, err := b.db.QueryContext(ctx, `
SELECT name, content_type, size, width, height, uploaded_at
FROM media ORDER BY uploaded_at DESC, name DESC`)
	if err != nil {
		return nil, fmt.Errorf("media list: %w", err)
	}
	defer rows.Close()

	var out []Object
	for rows.Next() {
		var (
			obj      Object
			uploaded string
		)
		if err := rows.Scan(&obj.Name, &obj.ContentType, &obj.Size, &obj.Width, &obj.Height, &uploaded); err != nil {
			return nil, err
		}
		obj.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
		out = append(out, obj)
	}
	return out, rows.Err()
}
