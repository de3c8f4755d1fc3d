// Package provider normalizes heterogeneous AI backends into one dispatch
// contract.
//
// The two supported backends differ in two ways the rest of the system never
// sees: how the system prompt travels (OpenAI wants it inside the message
// array, Anthropic wants a dedicated field) and how usage is accounted
// (total_tokens vs input_tokens + output_tokens). Each Dispatcher folds those
// differences into a Reply{Text, Tokens}.
//
// The Registry is the single point that maps an agent's provider to its
// Dispatcher. Adding a third backend means writing one new Dispatcher and
// registering it; no caller changes.
package provider
