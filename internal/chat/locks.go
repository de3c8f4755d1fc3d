// ABOUTME: Per-conversation serialization tokens for chat turns.
// ABOUTME: Ref-counted keyed mutexes; entries vanish when the last holder releases.

package chat

import "sync"

// convLock is one conversation's mutex plus the number of goroutines
// holding or waiting for it.
type convLock struct {
	mu   sync.Mutex
	refs int
}

// ConversationLocks hands out one mutex per conversation ID. Turns on the
// same conversation queue behind each other; turns on different conversations
// never contend. The retention sweep takes the same lock before deleting a
// conversation, so eviction can never race a live turn.
type ConversationLocks struct {
	mu    sync.Mutex
	locks map[string]*convLock
}

// NewConversationLocks creates an empty lock table.
func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{
		locks: make(map[string]*convLock),
	}
}

// Lock acquires the serialization token for a conversation, blocking until
// any current holder releases it.
func (l *ConversationLocks) Lock(conversationID string) {
	l.mu.Lock()
	entry, ok := l.locks[conversationID]
	if !ok {
		entry = &convLock{}
		l.locks[conversationID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the serialization token for a conversation.
// Must pair with a prior Lock for the same ID.
func (l *ConversationLocks) Unlock(conversationID string) {
	l.mu.Lock()
	entry, ok := l.locks[conversationID]
	if !ok {
		l.mu.Unlock()
		panic("chat: unlock of unheld conversation " + conversationID)
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, conversationID)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
