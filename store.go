package bizsite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// OpenDatabase opens (or creates) the SQLite database at path, ensuring the
// data directory exists. Queries are traced through otelsql.
func OpenDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := otelsql.Open("sqlite", path,
		otelsql.WithAttributes(attribute.String("db.system", "sqlite")))
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while the admin writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return db, nil
}

// Inquiry is a contact form submission.
type Inquiry struct {
	ID        int64
	Name      string
	Email     string
	Company   string
	Message   string
	CreatedAt time.Time
	Read      bool
}

// InquiryStore keeps contact form submissions in SQLite.
type InquiryStore struct {
	db *sql.DB
}

// NewInquiryStore creates the inquiries table if needed.
func NewInquiryStore(db *sql.DB) (*InquiryStore, error) {
	s := &InquiryStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("inquiries schema: %w", err)
	}
	return s, nil
}

func (s *InquiryStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS inquiries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    company TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    created_at TEXT NOT NULL,
    read INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS inquiries_created_at ON inquiries (created_at);
`)
	return err
}

// Create stores a new unread inquiry and returns its id.
func (s *InquiryStore) Create(ctx context.Context, in Inquiry) (int64, error) {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO inquiries (name, email, company, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Email, in.Company, in.Message, in.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert inquiry: %w", err)
	}
	return res.LastInsertId()
}

// List returns every inquiry, newest first.
func (s *InquiryStore) List(ctx context.Context) ([]Inquiry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, company, message, created_at, read FROM inquiries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Inquiry
	for rows.Next() {
		var (
			in      Inquiry
			created string
			read    int
		)
		if err := rows.Scan(&in.ID, &in.Name, &in.Email, &in.Company, &in.Message, &created, &read); err != nil {
			return nil, err
		}
		in.CreatedAt, _ = time.Parse(time.RFC3339, created)
		in.Read = read == 1
		out = append(out, in)
	}
	return out, rows.Err()
}

// CountUnread returns the number of inquiries not yet marked as read.
func (s *InquiryStore) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inquiries WHERE read = 0`).Scan(&n)
	return n, err
}

// MarkRead flags an inquiry as read.
func (s *InquiryStore) MarkRead(ctx context.Context, id int64) error {
	return s.exec(ctx, `UPDATE inquiries SET read = 1 WHERE id = ?`, id)
}

// Delete removes an inquiry.
func (s *InquiryStore) Delete(ctx context.Context, id int64) error {
	return s.exec(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
}

func (s *InquiryStore) exec(ctx context.Context, query string, id int64) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
