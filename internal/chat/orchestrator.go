// ABOUTME: Orchestrator is the single code path for chat turns from both gateways.
// ABOUTME: Resolves the agent, serializes per-conversation, dispatches, appends, meters usage.

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/genz-ai/agentchat/internal/agent"
	"github.com/genz-ai/agentchat/internal/provider"
	"github.com/genz-ai/agentchat/internal/store"
)

// Validation errors, rejected before any state is touched.
var (
	ErrMissingAgentID = errors.New("agent id is required")
	ErrMissingText    = errors.New("message text is required")
)

// AgentResolver is what the orchestrator needs from the agent registry.
type AgentResolver interface {
	Get(id string) (*agent.Agent, error)
}

// TranscriptStore is what the orchestrator needs from storage.
type TranscriptStore interface {
	AppendMessage(ctx context.Context, conversationID string, msg *store.Message) (int, error)
	AddUsage(ctx context.Context, userID string, requests, tokens int64) error
}

// Dispatcher is what the orchestrator needs from the provider layer.
type Dispatcher interface {
	Dispatch(ctx context.Context, ag *agent.Agent, userText string) (*provider.Reply, error)
}

// TurnRequest describes one incoming chat turn.
type TurnRequest struct {
	AgentID        string
	Text           string
	ConversationID string // empty: a fresh conversation is minted
	UserID         string // empty: usage is not metered (anonymous realtime sends)
	ConnectionID   string // realtime connection that authored the turn, if any
}

// AgentSummary is the slim agent view returned with a completed turn.
type AgentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TurnResult is the outcome of a completed turn.
type TurnResult struct {
	Reply          string
	ConversationID string
	Tokens         int
	Agent          AgentSummary
}

// Orchestrator validates chat turns, serializes them per conversation, and
// drives the append → dispatch → append → meter sequence. Both the HTTP and
// realtime gateways delegate here; neither carries its own turn logic.
type Orchestrator struct {
	agents    AgentResolver
	providers Dispatcher
	store     TranscriptStore
	locks     *ConversationLocks
	logger    *slog.Logger
}

// New creates an Orchestrator. Pass nil logger for default.
func New(agents AgentResolver, providers Dispatcher, transcripts TranscriptStore, locks *ConversationLocks, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		agents:    agents,
		providers: providers,
		store:     transcripts,
		locks:     locks,
		logger:    logger.With("component", "orchestrator"),
	}
}

// Locks exposes the per-conversation lock table so the retention sweep can
// serialize deletions against live turns.
func (o *Orchestrator) Locks() *ConversationLocks {
	return o.locks
}

// HandleTurn runs one chat turn to completion.
//
// The user message is appended before the provider call; if the call fails,
// the user message stays but no assistant message is appended and usage is
// not metered. The per-conversation token is held from before the user append
// until after the assistant append, so a second turn on the same conversation
// cannot begin its provider call until this one's transcript writes are done.
// Turns on different conversations proceed fully in parallel.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.AgentID == "" {
		return nil, ErrMissingAgentID
	}
	if req.Text == "" {
		return nil, ErrMissingText
	}

	ag, err := o.agents.Get(req.AgentID)
	if err != nil {
		return nil, err
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = "conv-" + uuid.New().String()
	}

	// The turn must complete even if the caller goes away mid-flight (a
	// dropped realtime connection does not cancel a dispatched call).
	turnCtx := context.WithoutCancel(ctx)

	o.locks.Lock(conversationID)
	defer o.locks.Unlock(conversationID)

	userMsg := &store.Message{
		ID:           uuid.New().String(),
		Role:         store.RoleUser,
		Content:      req.Text,
		ConnectionID: req.ConnectionID,
		CreatedAt:    time.Now(),
	}
	if _, err := o.store.AppendMessage(turnCtx, conversationID, userMsg); err != nil {
		return nil, fmt.Errorf("recording user message: %w", err)
	}

	reply, err := o.providers.Dispatch(turnCtx, ag, req.Text)
	if err != nil {
		// User message stays; the transcript records what was asked.
		o.logger.Warn("provider dispatch failed",
			"conversation_id", conversationID,
			"agent_id", ag.ID,
			"error", err,
		)
		return nil, err
	}

	assistantMsg := &store.Message{
		ID:        uuid.New().String(),
		Role:      store.RoleAssistant,
		Content:   reply.Text,
		CreatedAt: time.Now(),
	}
	if _, err := o.store.AppendMessage(turnCtx, conversationID, assistantMsg); err != nil {
		return nil, fmt.Errorf("recording assistant message: %w", err)
	}

	if req.UserID != "" {
		if err := o.store.AddUsage(turnCtx, req.UserID, 1, int64(reply.Tokens)); err != nil {
			// The turn itself succeeded; metering failure is logged, not fatal.
			o.logger.Error("failed to update usage",
				"user_id", req.UserID,
				"tokens", reply.Tokens,
				"error", err,
			)
		}
	}

	o.logger.Debug("turn completed",
		"conversation_id", conversationID,
		"agent_id", ag.ID,
		"tokens", reply.Tokens,
	)

	return &TurnResult{
		Reply:          reply.Text,
		ConversationID: conversationID,
		Tokens:         reply.Tokens,
		Agent:          AgentSummary{ID: ag.ID, Name: ag.Name},
	}, nil
}
