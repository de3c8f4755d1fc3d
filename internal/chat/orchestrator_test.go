// ABOUTME: Tests for turn orchestration against a real in-memory SQLite store.
// ABOUTME: Covers transcript alternation, serialization, parallelism, and usage metering.

package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genz-ai/agentchat/internal/agent"
	"github.com/genz-ai/agentchat/internal/provider"
	"github.com/genz-ai/agentchat/internal/store"
)

// dispatchFunc adapts a function to the Dispatcher interface.
type dispatchFunc func(ctx context.Context, ag *agent.Agent, text string) (*provider.Reply, error)

func (f dispatchFunc) Dispatch(ctx context.Context, ag *agent.Agent, text string) (*provider.Reply, error) {
	return f(ctx, ag, text)
}

// echoDispatcher replies "re: <text>" with a fixed token cost.
func echoDispatcher(tokens int) dispatchFunc {
	return func(_ context.Context, _ *agent.Agent, text string) (*provider.Reply, error) {
		return &provider.Reply{Text: "re: " + text, Tokens: tokens}, nil
	}
}

func newTestOrchestrator(t *testing.T, d Dispatcher) (*Orchestrator, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	agents := agent.NewRegistry(nil)
	require.NoError(t, agent.SeedBuiltins(agents))

	o := New(agents, d, s, NewConversationLocks(), nil)
	return o, s
}

func TestHandleTurn_AppendsUserThenAssistant(t *testing.T) {
	o, s := newTestOrchestrator(t, echoDispatcher(7))
	ctx := context.Background()

	result, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "Hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reply)
	assert.Equal(t, 7, result.Tokens)
	assert.Equal(t, "general-assistant", result.Agent.ID)
	assert.Equal(t, "General Assistant", result.Agent.Name)
	assert.NotEmpty(t, result.ConversationID)

	msgs, err := s.GetMessages(ctx, result.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, store.RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, store.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "re: Hello", msgs[1].Content)

	// A second turn on the same conversation makes it four messages.
	_, err = o.HandleTurn(ctx, TurnRequest{
		AgentID:        "general-assistant",
		Text:           "And again",
		ConversationID: result.ConversationID,
	})
	require.NoError(t, err)

	msgs, err = s.GetMessages(ctx, result.ConversationID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func TestHandleTurn_MintsFreshConversationIDs(t *testing.T) {
	o, _ := newTestOrchestrator(t, echoDispatcher(1))
	ctx := context.Background()

	r1, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "one"})
	require.NoError(t, err)
	r2, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "two"})
	require.NoError(t, err)

	assert.Contains(t, r1.ConversationID, "conv-")
	assert.NotEqual(t, r1.ConversationID, r2.ConversationID)
}

func TestHandleTurn_UnknownAgentAppendsNothing(t *testing.T) {
	o, s := newTestOrchestrator(t, echoDispatcher(1))
	ctx := context.Background()

	_, err := o.HandleTurn(ctx, TurnRequest{AgentID: "no-such-agent", Text: "Hello"})
	assert.ErrorIs(t, err, agent.ErrAgentNotFound)

	ids, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHandleTurn_Validation(t *testing.T) {
	o, _ := newTestOrchestrator(t, echoDispatcher(1))
	ctx := context.Background()

	_, err := o.HandleTurn(ctx, TurnRequest{Text: "Hello"})
	assert.ErrorIs(t, err, ErrMissingAgentID)

	_, err = o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant"})
	assert.ErrorIs(t, err, ErrMissingText)
}

func TestHandleTurn_ProviderFailureKeepsUserMessage(t *testing.T) {
	failing := dispatchFunc(func(_ context.Context, _ *agent.Agent, _ string) (*provider.Reply, error) {
		return nil, fmt.Errorf("%w: backend down", provider.ErrProvider)
	})
	o, s := newTestOrchestrator(t, failing)
	ctx := context.Background()

	convID := "conv-" + uuid.New().String()
	_, err := o.HandleTurn(ctx, TurnRequest{
		AgentID:        "general-assistant",
		Text:           "Hello",
		ConversationID: convID,
	})
	assert.ErrorIs(t, err, provider.ErrProvider)

	// User message recorded, no assistant message.
	msgs, err := s.GetMessages(ctx, convID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, store.RoleUser, msgs[0].Role)

	// The conversation is not wedged: a later turn succeeds.
	o2 := New(o.agents, echoDispatcher(1), s, o.locks, nil)
	_, err = o2.HandleTurn(ctx, TurnRequest{
		AgentID:        "general-assistant",
		Text:           "Retry",
		ConversationID: convID,
	})
	require.NoError(t, err)

	msgs, err = s.GetMessages(ctx, convID)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestHandleTurn_SameConversationStrictOrdering(t *testing.T) {
	// The first turn's provider call is held open until released; the second
	// turn's provider returns instantly. Strict ordering still requires the
	// second turn's messages to land after the first turn's.
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	d := dispatchFunc(func(_ context.Context, _ *agent.Agent, text string) (*provider.Reply, error) {
		if text == "first" {
			close(firstStarted)
			<-releaseFirst
		}
		return &provider.Reply{Text: "re: " + text, Tokens: 1}, nil
	})
	o, s := newTestOrchestrator(t, d)
	ctx := context.Background()

	convID := "conv-" + uuid.New().String()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "first", ConversationID: convID})
		assert.NoError(t, err)
	}()

	// Wait for the first turn to be mid-provider-call, then start the second.
	select {
	case <-firstStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first turn never reached the provider")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "second", ConversationID: convID})
		assert.NoError(t, err)
	}()

	// Let the second turn queue up on the conversation lock before releasing.
	time.Sleep(100 * time.Millisecond)
	close(releaseFirst)
	wg.Wait()

	msgs, err := s.GetMessages(ctx, convID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "re: first", msgs[1].Content)
	assert.Equal(t, "second", msgs[2].Content)
	assert.Equal(t, "re: second", msgs[3].Content)
}

func TestHandleTurn_DifferentConversationsDoNotBlockEachOther(t *testing.T) {
	blocked := make(chan struct{})
	release := make(chan struct{})
	d := dispatchFunc(func(_ context.Context, _ *agent.Agent, text string) (*provider.Reply, error) {
		if text == "slow" {
			close(blocked)
			<-release
		}
		return &provider.Reply{Text: "re: " + text, Tokens: 1}, nil
	})
	o, _ := newTestOrchestrator(t, d)
	ctx := context.Background()

	go func() {
		_, _ = o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "slow", ConversationID: "conv-slow"})
	}()

	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("slow turn never reached the provider")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "fast", ConversationID: "conv-fast"})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
		// The fast conversation completed while the slow one was in flight.
	case <-time.After(2 * time.Second):
		t.Fatal("independent conversation was blocked")
	}

	close(release)
}

func TestHandleTurn_UsageEqualsSumOfReportedCosts(t *testing.T) {
	costs := []int{12, 30}
	var call int
	d := dispatchFunc(func(_ context.Context, _ *agent.Agent, text string) (*provider.Reply, error) {
		tokens := costs[call]
		call++
		return &provider.Reply{Text: "re: " + text, Tokens: tokens}, nil
	})
	o, s := newTestOrchestrator(t, d)
	ctx := context.Background()

	u := &store.User{
		ID:           uuid.New().String(),
		Email:        "a@example.com",
		Username:     "a",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, u))

	for _, text := range []string{"one", "two"} {
		_, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: text, UserID: u.ID})
		require.NoError(t, err)
	}

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.RequestCount)
	assert.Equal(t, int64(42), got.TokenCount)
}

func TestHandleTurn_ProviderFailureDoesNotMeterUsage(t *testing.T) {
	failing := dispatchFunc(func(_ context.Context, _ *agent.Agent, _ string) (*provider.Reply, error) {
		return nil, fmt.Errorf("%w: nope", provider.ErrProvider)
	})
	o, s := newTestOrchestrator(t, failing)
	ctx := context.Background()

	u := &store.User{
		ID:           uuid.New().String(),
		Email:        "a@example.com",
		Username:     "a",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, u))

	_, err := o.HandleTurn(ctx, TurnRequest{AgentID: "general-assistant", Text: "hi", UserID: u.ID})
	require.Error(t, err)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RequestCount)
	assert.Zero(t, got.TokenCount)
}
