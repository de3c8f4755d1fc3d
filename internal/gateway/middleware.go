// ABOUTME: HTTP middleware: panic recovery and per-client API rate limiting
// ABOUTME: Rate limits key on client address and cover /api/ routes only

package gateway

import (
	"net"
	"net/http"
	"strings"
)

// recoverMiddleware converts handler panics into 500 responses instead of
// tearing down the connection.
func (g *Gateway) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				g.logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
				g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware rejects API requests from clients that exhausted their
// window. Health checks and the websocket endpoint are not limited.
func (g *Gateway) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			if !g.limiter.Allow(clientAddr(r)) {
				g.sendJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr extracts the client host from the request, without the port so
// one client's connections share a rate limit window.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
