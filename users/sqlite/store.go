// Package sqlite provides a SQLite-backed users.Repo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/users"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                TEXT PRIMARY KEY,
	email             TEXT NOT NULL DEFAULT '',
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	profile_image_url TEXT NOT NULL DEFAULT '',
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL
);`

// Store persists user records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ users.Repo = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the store at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Upsert inserts or updates a record keyed by id. created_at survives
// updates; updated_at is bumped every time.
func (s *Store) Upsert(ctx context.Context, user users.UpsertUser) (*users.User, error) {
	if strings.TrimSpace(user.ID) == "" {
		return nil, apperror.New(apperror.KindValidation, "user id is required")
	}

	now := toMillis(time.Now())
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, first_name, last_name, profile_image_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	email = excluded.email,
	first_name = excluded.first_name,
	last_name = excluded.last_name,
	profile_image_url = excluded.profile_image_url,
	updated_at = excluded.updated_at
`, user.ID, user.Email, user.FirstName, user.LastName, user.ProfileImageURL, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return s.GetByID(ctx, user.ID)
}

// GetByID fetches one record by subject.
func (s *Store) GetByID(ctx context.Context, id string) (*users.User, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, first_name, last_name, profile_image_url, created_at, updated_at
FROM users WHERE id = ?
`, id)

	var (
		user      users.User
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.ProfileImageURL, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.KindNotFound, "user %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}
