package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite implements Store on a local SQLite database.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and migrates it to the latest schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := migrateUp(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLite{conn: conn, now: func() time.Time { return time.Now().UTC() }}, nil
}

func migrateUp(conn *sql.DB) error {
	instance, err := sqlite3.WithInstance(conn, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("store: migrate driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: read migrations: %w", err)
	}
	// m.Close would also close conn, so only the source is released.
	defer src.Close()
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", instance)
	if err != nil {
		return fmt.Errorf("store: init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

// List returns all posts, newest date first.
func (s *SQLite) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, date, content, created_at, updated_at
		FROM posts
		ORDER BY date DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Get returns a single post.
func (s *SQLite) Get(ctx context.Context, id string) (*models.Record, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, title, date, content, created_at, updated_at
		FROM posts WHERE id = ?
	`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	return r, nil
}

// Create inserts a new post with a fresh UUID.
func (s *SQLite) Create(ctx context.Context, f models.Fields) (*models.Record, error) {
	now := s.now()
	r := models.Record{
		Post: models.Post{
			ID:      uuid.NewString(),
			Title:   f.Title,
			Date:    f.Date,
			Content: f.Content,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO posts (id, title, date, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Title, r.Date, r.Content, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create: %w", err)
	}
	return &r, nil
}

// Update applies patch inside a transaction.
func (s *SQLite) Update(ctx context.Context, id string, patch models.Patch) (*models.Record, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	row := tx.QueryRowContext(ctx, `
		SELECT id, title, date, content, created_at, updated_at
		FROM posts WHERE id = ?
	`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update read %s: %w", id, err)
	}

	r.Post = patch.Apply(r.Post)
	r.UpdatedAt = s.now()
	_, err = tx.ExecContext(ctx, `
		UPDATE posts SET title = ?, date = ?, content = ?, updated_at = ?
		WHERE id = ?
	`, r.Title, r.Date, r.Content, r.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("store: update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return r, nil
}

// Delete removes a post.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Count returns the number of stored posts.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, `SELECT count(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*models.Record, error) {
	var r models.Record
	if err := sc.Scan(&r.ID, &r.Title, &r.Date, &r.Content, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}
