package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/karimelh/salespoint/internal/user"
)

const timeLayout = "2006-01-02 15:04:05"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type userRow struct {
	ID        int64   `db:"id"`
	Username  string  `db:"username"`
	Password  string  `db:"password"`
	Name      string  `db:"name"`
	Email     *string `db:"email"`
	Role      string  `db:"role"`
	CreatedAt string  `db:"created_at"`
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	var createdAt string

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, password, name, email, role)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		u.Username, u.PasswordHash, u.Name, nullIfEmpty(u.Email), string(u.Role),
	).Scan(&u.ID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUsernameTaken
		}

		return fmt.Errorf("creating user: %w", err)
	}

	u.CreatedAt = parseTime(createdAt)

	return nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var row userRow

	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, password, name, email, role, created_at
		FROM users WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &user.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.Password,
		Name:         row.Name,
		Email:        deref(row.Email),
		Role:         user.Role(row.Role),
		CreatedAt:    parseTime(row.CreatedAt),
	}, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		hash, id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return user.ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
