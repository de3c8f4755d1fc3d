// ABOUTME: Dispatcher abstraction that normalizes AI backends into one call shape.
// ABOUTME: Only this package branches on provider identity.

package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/genz-ai/agentchat/internal/agent"
)

// ErrProvider indicates the backend call failed, timed out, or returned
// malformed data. Dispatchers do not retry; retry policy belongs to callers.
var ErrProvider = errors.New("provider request failed")

// ErrUnknownProvider indicates no dispatcher is registered for an agent's provider.
var ErrUnknownProvider = errors.New("unknown provider")

// Reply is the normalized result of one provider call.
// Tokens is the total cost reported by the backend, regardless of how the
// backend itself accounts for it.
type Reply struct {
	Text   string
	Tokens int
}

// Dispatcher sends one user message to an AI backend on behalf of an agent.
type Dispatcher interface {
	Dispatch(ctx context.Context, ag *agent.Agent, userText string) (*Reply, error)
}

// Registry maps providers to their dispatchers. Adding a backend means
// registering one new Dispatcher here; callers never branch on provider.
type Registry struct {
	dispatchers map[agent.Provider]Dispatcher
	logger      *slog.Logger
}

// NewRegistry creates an empty dispatcher registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dispatchers: make(map[agent.Provider]Dispatcher),
		logger:      logger.With("component", "provider"),
	}
}

// Register binds a dispatcher to a provider, replacing any previous binding.
func (r *Registry) Register(p agent.Provider, d Dispatcher) {
	r.dispatchers[p] = d
	r.logger.Info("provider registered", "provider", p)
}

// Dispatch routes the call to the dispatcher for the agent's provider.
func (r *Registry) Dispatch(ctx context.Context, ag *agent.Agent, userText string) (*Reply, error) {
	d, ok := r.dispatchers[ag.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, ag.Provider)
	}
	return d.Dispatch(ctx, ag, userText)
}
