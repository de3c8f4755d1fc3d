// ABOUTME: Websocket hub: connection registry, conversation rooms, event routing.
// ABOUTME: Turns are delegated to the orchestrator; replies fan back out to rooms.

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/genz-ai/agentchat/internal/agent"
	"github.com/genz-ai/agentchat/internal/chat"
)

// TurnHandler is what the hub needs from the chat orchestrator.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req chat.TurnRequest) (*chat.TurnResult, error)
}

// Hub owns all live websocket connections and their room subscriptions.
// Rooms are keyed by conversation ID; every subscriber of a room receives
// that conversation's traffic.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	// Room subscriptions: conversationID -> set of clients
	roomSubs map[string]map[*Client]bool
	mu       sync.RWMutex

	turns  TurnHandler
	logger *slog.Logger
}

// NewHub creates a hub routing send-message events to the given handler.
// Pass nil logger for default.
func NewHub(turns TurnHandler, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		roomSubs:   make(map[string]map[*Client]bool),
		turns:      turns,
		logger:     logger.With("component", "realtime"),
	}
}

// Run processes connection lifecycle events until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("client connected", "connection_id", client.ID)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// send stays open: runTurn goroutines may hold a room
				// snapshot that still includes this client. They enqueue
				// into the buffer; the write pump exits via done.
				close(client.done)
				h.removeFromAllRooms(client)
				h.logger.Info("client disconnected", "connection_id", client.ID)
			}

		case <-ctx.Done():
			return
		}
	}
}

// Register hands a new connection to the hub's run loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// SubscribeRoom adds a client to a conversation's room.
func (h *Hub) SubscribeRoom(conversationID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.roomSubs[conversationID] == nil {
		h.roomSubs[conversationID] = make(map[*Client]bool)
	}
	h.roomSubs[conversationID][client] = true
}

// UnsubscribeRoom removes a client from a conversation's room.
func (h *Hub) UnsubscribeRoom(conversationID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.roomSubs[conversationID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.roomSubs, conversationID)
		}
	}
}

// BroadcastToRoom delivers an event to every subscriber of a conversation,
// optionally excluding one client (the sender of a user message).
func (h *Hub) BroadcastToRoom(conversationID string, event Event, exclude *Client) {
	h.mu.RLock()
	subs := h.roomSubs[conversationID]
	clients := make([]*Client, 0, len(subs))
	for client := range subs {
		if client != exclude {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.SendJSON(event)
	}
}

func (h *Hub) removeFromAllRooms(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conversationID, subs := range h.roomSubs {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.roomSubs, conversationID)
		}
	}
}

// handleMessage routes one inbound frame. Called from the client's read pump.
func (h *Hub) handleMessage(client *Client, data []byte) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		h.logger.Warn("invalid frame", "connection_id", client.ID, "error", err)
		client.SendJSON(NewEvent(EventError, ErrorPayload{Message: "invalid event"}))
		return
	}

	switch ev.Type {
	case EventJoinConversation:
		var p JoinPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ConversationID == "" {
			client.SendJSON(NewEvent(EventError, ErrorPayload{Message: "conversationId is required"}))
			return
		}
		h.SubscribeRoom(p.ConversationID, client)
		h.logger.Debug("joined conversation", "connection_id", client.ID, "conversation_id", p.ConversationID)

	case EventLeaveConversation:
		var p JoinPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ConversationID == "" {
			client.SendJSON(NewEvent(EventError, ErrorPayload{Message: "conversationId is required"}))
			return
		}
		h.UnsubscribeRoom(p.ConversationID, client)

	case EventSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			client.SendJSON(NewEvent(EventError, ErrorPayload{Message: "invalid send-message payload"}))
			return
		}
		// The provider call can take seconds; never block the read pump on it.
		go h.runTurn(client, p)

	default:
		h.logger.Warn("unknown event type", "type", ev.Type)
		client.SendJSON(NewEvent(EventError, ErrorPayload{Message: "unknown event type"}))
	}
}

// runTurn executes one chat turn for a send-message event. The user message
// is echoed to the rest of the room right away; the agent reply goes to the
// whole room once the turn completes. Failures go back to the sender only.
func (h *Hub) runTurn(client *Client, p SendMessagePayload) {
	if p.ConversationID != "" {
		h.BroadcastToRoom(p.ConversationID, NewEvent(EventUserMessage, UserMessagePayload{
			Message:        p.Message,
			ConnectionID:   client.ID,
			ConversationID: p.ConversationID,
			Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		}), client)
	}

	result, err := h.turns.HandleTurn(context.Background(), chat.TurnRequest{
		AgentID:        p.AgentID,
		Text:           p.Message,
		ConversationID: p.ConversationID,
		UserID:         client.UserID,
		ConnectionID:   client.ID,
	})
	if err != nil {
		client.SendJSON(NewEvent(EventError, ErrorPayload{Message: turnErrorMessage(err)}))
		return
	}

	// A fresh conversation was minted: pull the sender into its room so
	// they receive the rest of its traffic.
	if p.ConversationID == "" {
		h.SubscribeRoom(result.ConversationID, client)
	}

	h.BroadcastToRoom(result.ConversationID, NewEvent(EventAIResponse, AIResponsePayload{
		Response:       result.Reply,
		ConversationID: result.ConversationID,
		Tokens:         result.Tokens,
		Agent:          AIAgent{ID: result.Agent.ID, Name: result.Agent.Name},
	}), nil)
}

// turnErrorMessage maps orchestrator failures to client-safe text.
func turnErrorMessage(err error) string {
	switch {
	case errors.Is(err, chat.ErrMissingAgentID), errors.Is(err, chat.ErrMissingText):
		return err.Error()
	case errors.Is(err, agent.ErrAgentNotFound):
		return "agent not found"
	default:
		return "failed to process message"
	}
}
