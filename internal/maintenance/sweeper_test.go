// ABOUTME: Tests for retention sweeps over a real in-memory store.
// ABOUTME: Covers cutoff math, lock serialization with live turns, and error isolation.

package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genz-ai/agentchat/internal/chat"
	"github.com/genz-ai/agentchat/internal/store"
)

func newTestSweeper(t *testing.T, opts ...Option) (*Sweeper, *store.SQLiteStore, *chat.ConversationLocks) {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	locks := chat.NewConversationLocks()
	return NewSweeper(s, s, locks, nil, opts...), s, locks
}

func appendAt(t *testing.T, s *store.SQLiteStore, convID string, age time.Duration) {
	t.Helper()
	_, err := s.AppendMessage(context.Background(), convID, &store.Message{
		ID:        convID + "-m1",
		Role:      store.RoleUser,
		Content:   "hello",
		CreatedAt: time.Now().Add(-age),
	})
	require.NoError(t, err)
}

func TestDefaultWindows(t *testing.T) {
	sw, _, _ := newTestSweeper(t)

	assert.Equal(t, 30*24*time.Hour, sw.conversationTTL)
	assert.Equal(t, 7*24*time.Hour, sw.fileTTL)
	// Sweeps run daily by default.
	assert.Equal(t, 24*time.Hour, sw.interval)
}

func TestSweep_DeletesOnlyExpiredConversations(t *testing.T) {
	sw, s, _ := newTestSweeper(t)
	ctx := context.Background()

	appendAt(t, s, "conv-old", 31*24*time.Hour)
	appendAt(t, s, "conv-fresh", 29*24*time.Hour)

	sw.Sweep(ctx)

	ids, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"conv-fresh"}, ids)
}

func TestSweep_AgeMeasuredFromFirstMessage(t *testing.T) {
	sw, s, _ := newTestSweeper(t)
	ctx := context.Background()

	// Old first message, recent follow-up: still expired.
	appendAt(t, s, "conv-old", 31*24*time.Hour)
	_, err := s.AppendMessage(ctx, "conv-old", &store.Message{
		ID:        "m2",
		Role:      store.RoleAssistant,
		Content:   "hi",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	sw.Sweep(ctx)

	ids, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSweep_EvictsStaleFiles(t *testing.T) {
	sw, s, _ := newTestSweeper(t)
	ctx := context.Background()

	require.NoError(t, s.SaveFile(ctx, &store.File{
		ID:         "file-old",
		Name:       "old.txt",
		Size:       1,
		Data:       []byte("x"),
		UploadedAt: time.Now().Add(-8 * 24 * time.Hour),
	}))
	require.NoError(t, s.SaveFile(ctx, &store.File{
		ID:         "file-fresh",
		Name:       "fresh.txt",
		Size:       1,
		Data:       []byte("x"),
		UploadedAt: time.Now().Add(-6 * 24 * time.Hour),
	}))

	sw.Sweep(ctx)

	_, err := s.GetFile(ctx, "file-old")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetFile(ctx, "file-fresh")
	assert.NoError(t, err)
}

func TestSweep_CustomWindows(t *testing.T) {
	sw, s, _ := newTestSweeper(t, WithConversationTTL(time.Hour), WithFileTTL(time.Minute))
	ctx := context.Background()

	appendAt(t, s, "conv-2h", 2*time.Hour)
	sw.Sweep(ctx)

	ids, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSweep_WaitsForHeldConversationLock(t *testing.T) {
	sw, s, locks := newTestSweeper(t)
	ctx := context.Background()

	appendAt(t, s, "conv-old", 31*24*time.Hour)

	// Simulate a turn in flight on the expired conversation.
	locks.Lock("conv-old")

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sw.Sweep(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("sweep deleted a conversation while its lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	locks.Unlock("conv-old")
	wg.Wait()

	ids, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// failingEvicter breaks conversation listing to prove files still get swept.
type failingEvicter struct{}

func (failingEvicter) ListConversationsBefore(context.Context, time.Time) ([]string, error) {
	return nil, errors.New("boom")
}

func (failingEvicter) DeleteConversation(context.Context, string) error {
	return errors.New("boom")
}

func TestSweep_ConversationErrorDoesNotBlockFiles(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.SaveFile(ctx, &store.File{
		ID:         "file-old",
		Name:       "old.txt",
		Size:       1,
		Data:       []byte("x"),
		UploadedAt: time.Now().Add(-8 * 24 * time.Hour),
	}))

	sw := NewSweeper(failingEvicter{}, s, chat.NewConversationLocks(), nil)
	sw.Sweep(ctx)

	_, err = s.GetFile(ctx, "file-old")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_SweepsOnStartAndStopsOnCancel(t *testing.T) {
	sw, s, _ := newTestSweeper(t, WithInterval(time.Hour))
	appendAt(t, s, "conv-old", 31*24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	// The startup sweep should clear the expired conversation promptly.
	require.Eventually(t, func() bool {
		ids, err := s.ListConversations(context.Background())
		return err == nil && len(ids) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
