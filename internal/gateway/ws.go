// ABOUTME: Websocket endpoint: upgrades connections and hands them to the hub.

package gateway

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/genz-ai/agentchat/internal/auth"
	"github.com/genz-ai/agentchat/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebsocket handles GET /ws requests: upgrades the connection and
// starts its pumps. A valid token attaches the user's identity so realtime
// turns are metered; anonymous connections chat unmetered. Browsers cannot
// set headers on websocket upgrades, so a token query parameter is accepted
// alongside the bearer header.
func (g *Gateway) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if id := auth.FromContext(r.Context()); id != nil {
		userID = id.UserID
	} else if token := r.URL.Query().Get("token"); token != "" {
		if id, err := g.verifier.Verify(token); err == nil {
			userID = id.UserID
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := realtime.NewClient(g.hub, conn, userID)
	g.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}
