// Package chat runs chat turns: one user message in, one assistant reply out.
//
// The Orchestrator is the only code path that mutates a conversation. Each
// turn holds that conversation's serialization token across both transcript
// appends and the provider call in between, which is what keeps transcripts
// coherent: an assistant reply always lands directly after the user message
// that produced it, even when a later turn's provider call returns first.
//
// The token is always released, on success and on every failure path, so a
// failed turn never wedges its conversation.
package chat
