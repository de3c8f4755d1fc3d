// Package auth provides authentication for the chat gateway.
//
// # Authentication Methods
//
// Human users authenticate with JWT bearer tokens signed with HS256 using
// the configured jwt_secret. Tokens are minted at registration and login and
// carry the user ID ("sub") and email, expiring after the configured lifetime.
//
// # Middleware
//
// Two HTTP middlewares cover the gateway's needs:
//
//   - RequireAuth: rejects requests without a valid token (uploads, account)
//   - OptionalAuth: attaches an Identity when a valid token is present but
//     lets anonymous requests through (chat, so usage is metered only for
//     signed-in users)
//
// Handlers read the verified identity back with FromContext.
//
// # Passwords
//
// Account passwords are hashed with bcrypt at the default cost. Only the
// hash is stored; login compares with CheckPassword.
package auth
