// Package agent defines agent configurations and the registry that holds them.
//
// An Agent binds an AI provider, a model identifier and a system prompt under
// a stable ID. The Registry is the single owner of agent entries: agents are
// registered once (built-ins at startup, user-defined ones at runtime) and are
// never mutated or deleted afterwards. List returns agents in registration
// order, so built-ins always appear first.
package agent
