// ABOUTME: Background retention sweeps for old conversations and stale files.
// ABOUTME: Deletions take the same per-conversation lock as live chat turns.

package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Default retention windows.
const (
	DefaultConversationTTL = 30 * 24 * time.Hour
	DefaultFileTTL         = 7 * 24 * time.Hour
	DefaultInterval        = 24 * time.Hour
)

// ConversationEvicter is what the sweeper needs from storage to age out
// conversations. Listing and deleting are separate so each deletion can be
// wrapped in that conversation's lock.
type ConversationEvicter interface {
	ListConversationsBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

// FileEvicter is what the sweeper needs from storage to age out files.
type FileEvicter interface {
	EvictFilesBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Locker serializes a deletion against live turns on the same conversation.
type Locker interface {
	Lock(conversationID string)
	Unlock(conversationID string)
}

// Sweeper periodically deletes conversations and files older than their
// retention windows. Conversation age is measured from the first message.
type Sweeper struct {
	conversations ConversationEvicter
	files         FileEvicter
	locks         Locker
	logger        *slog.Logger

	conversationTTL time.Duration
	fileTTL         time.Duration
	interval        time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// Option adjusts a Sweeper.
type Option func(*Sweeper)

// WithConversationTTL overrides the conversation retention window.
func WithConversationTTL(ttl time.Duration) Option {
	return func(s *Sweeper) { s.conversationTTL = ttl }
}

// WithFileTTL overrides the file retention window.
func WithFileTTL(ttl time.Duration) Option {
	return func(s *Sweeper) { s.fileTTL = ttl }
}

// WithInterval overrides how often sweeps run.
func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) { s.interval = d }
}

// NewSweeper creates a sweeper with the default windows unless overridden.
// Pass nil logger for default.
func NewSweeper(conversations ConversationEvicter, files FileEvicter, locks Locker, logger *slog.Logger, opts ...Option) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sweeper{
		conversations:   conversations,
		files:           files,
		locks:           locks,
		logger:          logger.With("component", "maintenance"),
		conversationTTL: DefaultConversationTTL,
		fileTTL:         DefaultFileTTL,
		interval:        DefaultInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on the configured interval until the context is canceled.
// One sweep runs immediately on startup.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one retention pass. Errors are logged, not returned; a partial
// sweep just leaves work for the next pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()
	s.sweepConversations(ctx, now.Add(-s.conversationTTL))
	s.sweepFiles(ctx, now.Add(-s.fileTTL))
}

func (s *Sweeper) sweepConversations(ctx context.Context, cutoff time.Time) {
	ids, err := s.conversations.ListConversationsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to list expired conversations", "error", err)
		return
	}

	deleted := 0
	for _, id := range ids {
		// Hold the conversation's lock so an in-flight turn finishes its
		// transcript writes before the conversation disappears.
		s.locks.Lock(id)
		err := s.conversations.DeleteConversation(ctx, id)
		s.locks.Unlock(id)
		if err != nil {
			s.logger.Error("failed to delete conversation", "conversation_id", id, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("swept expired conversations", "deleted", deleted, "cutoff", cutoff)
	}
}

func (s *Sweeper) sweepFiles(ctx context.Context, cutoff time.Time) {
	n, err := s.files.EvictFilesBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to evict stale files", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("swept stale files", "deleted", n, "cutoff", cutoff)
	}
}
