// Package config handles configuration loading for the chat gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${AGENTCHAT_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	retention:
//	  conversation_ttl: "720h"
//	  file_ttl: "168h"
//	  sweep_interval: "1h"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":3001"   # API, websocket, and uploads
//
// Database:
//
//	database:
//	  path: "/var/lib/agentchat/gateway.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${AGENTCHAT_JWT_SECRET}"   # Required
//	  token_lifetime: "24h"
//
// Providers:
//
//	providers:
//	  openai_api_key: "${OPENAI_API_KEY}"
//	  anthropic_api_key: "${ANTHROPIC_API_KEY}"
//
// Rate limiting:
//
//	rate_limit:
//	  requests: 100
//	  window: "15m"
//
// Uploads:
//
//	uploads:
//	  max_size_bytes: 10485760
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/agentchat/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
