// ABOUTME: Wire protocol for the realtime gateway.
// ABOUTME: JSON event envelopes and payload shapes for both directions.

package realtime

import (
	"encoding/json"
	"log/slog"
)

// Inbound event types (client to server).
const (
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventSendMessage       = "send-message"
)

// Outbound event types (server to client).
const (
	EventUserMessage = "user-message"
	EventAIResponse  = "ai-response"
	EventError       = "error"
)

// Event is the envelope for every frame in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an outbound event, marshaling the payload.
func NewEvent(eventType string, payload interface{}) Event {
	ev := Event{Type: eventType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			slog.Error("failed to marshal event payload", "type", eventType, "error", err)
			return ev
		}
		ev.Payload = data
	}
	return ev
}

// JoinPayload carries join-conversation and leave-conversation requests.
type JoinPayload struct {
	ConversationID string `json:"conversationId"`
}

// SendMessagePayload carries a send-message request.
type SendMessagePayload struct {
	Message        string `json:"message"`
	AgentID        string `json:"agentId"`
	ConversationID string `json:"conversationId,omitempty"`
}

// UserMessagePayload echoes a participant's message to the rest of the room.
type UserMessagePayload struct {
	Message        string `json:"message"`
	ConnectionID   string `json:"connectionId"`
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestamp"`
}

// AIAgent identifies the agent that produced a reply.
type AIAgent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AIResponsePayload carries a completed agent reply to the whole room.
type AIResponsePayload struct {
	Response       string  `json:"response"`
	ConversationID string  `json:"conversationId"`
	Tokens         int     `json:"tokens"`
	Agent          AIAgent `json:"agent"`
}

// ErrorPayload is sent only to the connection whose request failed.
type ErrorPayload struct {
	Message string `json:"message"`
}
