// Package realtime is the websocket side of the gateway.
//
// Each connection runs a read pump and a write pump around a buffered send
// queue. The Hub tracks connections and their conversation rooms: joining a
// conversation subscribes the connection to that room, and a send-message
// event runs a chat turn through the orchestrator. The user's message is
// echoed to the rest of the room immediately; the agent's reply fans out to
// the whole room when the turn completes; failures go back to the sender
// alone.
//
// Turns run on their own goroutines so a slow provider never stalls a
// connection's read pump, and the orchestrator detaches turns from the
// connection context, so a client that disconnects mid-turn still gets its
// transcript recorded.
package realtime
