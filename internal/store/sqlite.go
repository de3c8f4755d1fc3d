// ABOUTME: SQLite implementation of the Store interface using mattn/go-sqlite3.
// ABOUTME: Provides conversation/message persistence with automatic schema creation.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeFormat is how timestamps are stored. Nanosecond precision keeps
// append order and eviction cutoffs exact.
const timeFormat = time.RFC3339Nano

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed. Pass ":memory:" for an
// in-memory database (used by tests).
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection avoids
	// SQLITE_BUSY under concurrent appends and keeps :memory: databases from
	// being split across connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			seq             INTEGER NOT NULL,
			role            TEXT NOT NULL,
			content         TEXT NOT NULL,
			connection_id   TEXT,
			created_at      TEXT NOT NULL,

			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
			UNIQUE (conversation_id, seq),
			CHECK (role IN ('user', 'assistant'))
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages(conversation_id, seq);

		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			request_count INTEGER NOT NULL DEFAULT 0,
			token_count   INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS files (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			mime        TEXT NOT NULL,
			size        INTEGER NOT NULL,
			owner_id    TEXT NOT NULL,
			data        BLOB NOT NULL,
			uploaded_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_files_uploaded_at
			ON files(uploaded_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// AppendMessage appends a message to a conversation and returns its sequence
// position. The conversation row is created lazily on the first append.
// Appends to different conversations never interfere; appends to the same
// conversation are assigned strictly increasing sequence numbers.
func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID string, msg *Message) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversations (id, created_at) VALUES (?, ?)`,
		conversationID, msg.CreatedAt.UTC().Format(timeFormat),
	); err != nil {
		return 0, fmt.Errorf("ensuring conversation: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?`,
		conversationID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("computing sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, seq, role, content, connection_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, conversationID, seq, msg.Role, msg.Content,
		nullString(msg.ConnectionID), msg.CreatedAt.UTC().Format(timeFormat),
	); err != nil {
		return 0, fmt.Errorf("inserting message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing append: %w", err)
	}

	msg.ConversationID = conversationID
	msg.Seq = seq

	s.logger.Debug("message appended",
		"conversation_id", conversationID,
		"message_id", msg.ID,
		"role", msg.Role,
		"seq", seq,
	)
	return seq, nil
}

// GetMessages returns a conversation's messages in append order.
// An unknown conversation yields an empty slice, not an error.
func (s *SQLiteStore) GetMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, seq, role, content, connection_id, created_at
		 FROM messages
		 WHERE conversation_id = ?
		 ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := []*Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}
	return messages, nil
}

// ListConversations returns all conversation IDs, oldest first.
func (s *SQLiteStore) ListConversations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM conversations ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation rows: %w", err)
	}
	return ids, nil
}

// ListConversationsBefore returns the IDs of conversations whose first
// message predates the cutoff.
func (s *SQLiteStore) ListConversationsBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id
		 FROM conversations c
		 JOIN messages m ON m.conversation_id = c.id AND m.seq = 1
		 WHERE m.created_at < ?`,
		cutoff.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("querying evictable conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation rows: %w", err)
	}
	return ids, nil
}

// DeleteConversation removes a conversation and its messages.
// Deleting an absent conversation is a no-op.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, conversationID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ?`, conversationID); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	s.logger.Debug("conversation deleted", "conversation_id", conversationID)
	return nil
}

// EvictConversationsBefore deletes every conversation whose first message
// predates the cutoff and returns the number removed. Re-running with the
// same cutoff removes nothing new.
func (s *SQLiteStore) EvictConversationsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.ListConversationsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.DeleteConversation(ctx, id); err != nil {
			return 0, err
		}
	}
	if len(ids) > 0 {
		s.logger.Info("evicted conversations", "count", len(ids), "cutoff", cutoff)
	}
	return len(ids), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanMessage scans a single message row.
func scanMessage(rows *sql.Rows) (*Message, error) {
	var msg Message
	var connectionID sql.NullString
	var createdAtStr string

	err := rows.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.Seq,
		&msg.Role,
		&msg.Content,
		&connectionID,
		&createdAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning message row: %w", err)
	}

	if connectionID.Valid {
		msg.ConnectionID = connectionID.String
	}

	msg.CreatedAt, err = time.Parse(timeFormat, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &msg, nil
}

// nullString converts an empty string to a NULL-able value.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure SQLiteStore implements the Store interface.
var _ Store = (*SQLiteStore)(nil)
