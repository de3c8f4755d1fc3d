// ABOUTME: In-memory registry of agent definitions with stable listing order.
// ABOUTME: Agents are immutable once registered; there is no delete or replace.

package agent

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrDuplicateAgent indicates an agent with the same ID is already registered.
var ErrDuplicateAgent = errors.New("agent already registered")

// ErrAgentNotFound indicates the specified agent was not found.
var ErrAgentNotFound = errors.New("agent not found")

// Provider identifies which AI backend an agent is bound to.
type Provider string

// Supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderOpenAI || p == ProviderAnthropic
}

// Agent binds a provider, model and system prompt under a stable ID.
// Agents are never mutated after registration.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Provider     Provider  `json:"provider"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"systemPrompt"`
	Capabilities []string  `json:"capabilities"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	Custom       bool      `json:"isCustom,omitempty"`
}

// Registry holds all known agents. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*Agent
	order  []string // registration order, drives List
	logger *slog.Logger
}

// NewRegistry creates an empty registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		agents: make(map[string]*Agent),
		logger: logger.With("component", "agent-registry"),
	}
}

// Register adds an agent to the registry.
// Returns ErrDuplicateAgent if an agent with the same ID exists.
func (r *Registry) Register(a *Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[a.ID]; exists {
		return ErrDuplicateAgent
	}

	r.agents[a.ID] = a
	r.order = append(r.order, a.ID)
	r.logger.Info("agent registered",
		"agent_id", a.ID,
		"name", a.Name,
		"provider", a.Provider,
		"total_agents", len(r.agents),
	)
	return nil
}

// Get returns the agent with the given ID, or ErrAgentNotFound.
func (r *Registry) Get(id string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[id]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return a, nil
}

// List returns all agents in registration order.
func (r *Registry) List() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id])
	}
	return out
}
