// Package gateway wires the chat server together and runs its HTTP surface.
//
// # Endpoints
//
//	GET  /health                     liveness check
//	POST /api/chat                   one chat turn (auth required, metered)
//	GET  /api/agents                 list registered agents
//	POST /api/agents                 register a custom agent (auth required)
//	GET  /api/conversations/{id}     transcript in append order (auth required)
//	POST /api/auth/register          create an account, returns a JWT
//	POST /api/auth/login             exchange credentials for a JWT
//	GET  /api/auth/me                profile with usage counters (auth required)
//	POST /api/upload                 multipart file upload (auth required)
//	GET  /api/files/{id}             file download (auth required)
//	GET  /ws                         websocket upgrade for realtime chat
//
// # Error Taxonomy
//
// Chat turns map failures onto HTTP statuses: validation problems are 400,
// an unknown agent is 404, provider failures are 502, exhausted rate limit
// windows are 429, and anything unexpected is 500. Error bodies are always
// {"error": "..."}.
//
// # Lifecycle
//
// New wires every component; Run starts the hub, the retention sweeper, and
// the HTTP server, then blocks until the context is canceled or the server
// fails, shutting down gracefully either way.
package gateway
