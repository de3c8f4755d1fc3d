// Package store provides SQLite-backed persistence for agentchat.
//
// It owns three entity families:
//
//   - Conversations: append-only, ordered message transcripts. A conversation
//     comes into existence when its first message is appended and is removed
//     only by the retention sweep. Message order is the transcript order and
//     is never rewritten.
//   - Users: accounts with usage counters that only ever grow.
//   - Files: uploaded blobs with a shorter retention window.
//
// All mutation goes through the Store interface; no other package reaches
// into the tables directly. The orchestrator is responsible for serializing
// same-conversation appends; the store guarantees that appends to different
// conversations never interfere and that sequence numbers within one
// conversation are strictly increasing.
package store
