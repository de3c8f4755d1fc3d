// ABOUTME: HTTP API handlers for chat turns, agent listing, and transcripts.
// ABOUTME: Maps orchestrator errors onto the HTTP status taxonomy.

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/genz-ai/agentchat/internal/agent"
	"github.com/genz-ai/agentchat/internal/auth"
	"github.com/genz-ai/agentchat/internal/chat"
	"github.com/genz-ai/agentchat/internal/provider"
)

// ChatRequest is the JSON request body for POST /api/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	AgentID        string `json:"agentId"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse is the JSON response for POST /api/chat.
type ChatResponse struct {
	Response       string            `json:"response"`
	ConversationID string            `json:"conversationId"`
	Tokens         int               `json:"tokens"`
	Agent          chat.AgentSummary `json:"agent"`
}

// MessageResponse is one transcript entry in conversation history.
type MessageResponse struct {
	ID        string `json:"id"`
	Seq       int    `json:"seq"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// ConversationResponse is the JSON response for GET /api/conversations/{id}.
type ConversationResponse struct {
	ConversationID string            `json:"conversationId"`
	Messages       []MessageResponse `json:"messages"`
}

// handleChat handles POST /api/chat requests: one full chat turn.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := auth.MustFromContext(r.Context())
	result, err := g.orchestrator.HandleTurn(r.Context(), chat.TurnRequest{
		AgentID:        req.AgentID,
		Text:           req.Message,
		ConversationID: req.ConversationID,
		UserID:         id.UserID,
	})
	if err != nil {
		g.sendTurnError(w, err)
		return
	}

	g.sendJSON(w, http.StatusOK, ChatResponse{
		Response:       result.Reply,
		ConversationID: result.ConversationID,
		Tokens:         result.Tokens,
		Agent:          result.Agent,
	})
}

// sendTurnError maps orchestrator failures to HTTP statuses:
// validation 400, unknown agent 404, provider failure 502, anything else 500.
func (g *Gateway) sendTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrMissingAgentID), errors.Is(err, chat.ErrMissingText):
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, agent.ErrAgentNotFound):
		g.sendJSONError(w, http.StatusNotFound, "agent not found")
	case isProviderError(err):
		g.sendJSONError(w, http.StatusBadGateway, "failed to get response from agent")
	default:
		g.logger.Error("chat turn failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleAgents handles GET (list) and POST (register custom agent) on /api/agents.
func (g *Gateway) handleAgents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g.sendJSON(w, http.StatusOK, g.agents.List())

	case http.MethodPost:
		// Custom agents belong to an account.
		id := auth.FromContext(r.Context())
		if id == nil {
			g.sendJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var a agent.Agent
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if a.Name == "" || a.Model == "" {
			g.sendJSONError(w, http.StatusBadRequest, "name and model are required")
			return
		}
		if !a.Provider.Valid() {
			g.sendJSONError(w, http.StatusBadRequest, "provider must be openai or anthropic")
			return
		}
		// The ID is minted here, never taken from the request.
		a.ID = "agent-" + uuid.New().String()
		a.Custom = true
		a.CreatedBy = id.UserID
		a.CreatedAt = time.Now()
		if err := g.agents.Register(&a); err != nil {
			g.logger.Error("failed to register agent", "agent_id", a.ID, "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		g.sendJSON(w, http.StatusCreated, &a)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleConversation handles GET /api/conversations/{id} requests, returning
// the conversation's transcript in seq order. Requires authentication.
func (g *Gateway) handleConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	conversationID := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	if conversationID == "" || strings.Contains(conversationID, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	msgs, err := g.store.GetMessages(r.Context(), conversationID)
	if err != nil {
		g.logger.Error("failed to load conversation", "conversation_id", conversationID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// An unknown conversation is an empty transcript, not an error.
	resp := ConversationResponse{
		ConversationID: conversationID,
		Messages:       make([]MessageResponse, 0, len(msgs)),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, MessageResponse{
			ID:        m.ID,
			Seq:       m.Seq,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	g.sendJSON(w, http.StatusOK, resp)
}

func (g *Gateway) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// isProviderError reports whether the failure came from the provider layer.
func isProviderError(err error) bool {
	return errors.Is(err, provider.ErrProvider) || errors.Is(err, provider.ErrUnknownProvider)
}
