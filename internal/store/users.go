// ABOUTME: SQLite implementation for user accounts and usage counters.
// ABOUTME: Usage counters are monotonically non-decreasing, written by the orchestrator.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// CreateUser inserts a new user.
// Returns ErrDuplicateUser if the email is already registered.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, request_count, token_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.PasswordHash,
		u.RequestCount, u.TokenCount,
		u.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateUser
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("user created", "user_id", u.ID, "email", u.Email)
	return nil
}

// GetUser returns a user by ID, or ErrNotFound.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, request_count, token_count, created_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns a user by email, or ErrNotFound.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, request_count, token_count, created_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// AddUsage increments a user's usage counters.
// Returns ErrNotFound if the user does not exist.
func (s *SQLiteStore) AddUsage(ctx context.Context, userID string, requests, tokens int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET request_count = request_count + ?, token_count = token_count + ?
		 WHERE id = ?`,
		requests, tokens, userID,
	)
	if err != nil {
		return fmt.Errorf("updating usage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("usage updated",
		"user_id", userID,
		"requests", requests,
		"tokens", tokens,
	)
	return nil
}

// scanUser scans a single user row.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAtStr string

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.RequestCount,
		&u.TokenCount,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user row: %w", err)
	}

	u.CreatedAt, err = time.Parse(timeFormat, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &u, nil
}
