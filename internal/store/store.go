// ABOUTME: Store interface and data types for agentchat persistence.
// ABOUTME: Defines Message, User, File structs and the Store interface.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when registering an email that is already taken.
var ErrDuplicateUser = errors.New("user already exists")

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single transcript entry within a conversation.
// Messages are immutable once appended; Seq is assigned by the store and
// reflects append order.
type Message struct {
	ID             string
	ConversationID string
	Seq            int
	Role           string
	Content        string
	ConnectionID   string // realtime connection that authored the message, if any
	CreatedAt      time.Time
}

// User is an account with monotonically non-decreasing usage counters.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	RequestCount int64
	TokenCount   int64
	CreatedAt    time.Time
}

// File is uploaded file metadata plus its raw bytes.
type File struct {
	ID         string
	Name       string
	Mime       string
	Size       int64
	OwnerID    string
	Data       []byte
	UploadedAt time.Time
}

// Store defines the persistence operations for conversations, users and files.
type Store interface {
	// Conversations. AppendMessage creates the conversation lazily on first
	// append and returns the message's sequence position (1-based).
	AppendMessage(ctx context.Context, conversationID string, msg *Message) (int, error)
	GetMessages(ctx context.Context, conversationID string) ([]*Message, error)
	ListConversations(ctx context.Context) ([]string, error)

	// Retention. A conversation is evictable when its first message predates
	// the cutoff. ListConversationsBefore and DeleteConversation exist so the
	// sweeper can serialize each deletion against live turns.
	ListConversationsBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	EvictConversationsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	AddUsage(ctx context.Context, userID string, requests, tokens int64) error

	// Files
	SaveFile(ctx context.Context, f *File) error
	GetFile(ctx context.Context, id string) (*File, error)
	EvictFilesBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
