// Package websocket provides WebSocket transport for the Blood Flow game server.
//
// A central Hub keeps the connected clients grouped by session. Each client
// gets a read pump and a write pump goroutine; the write pump also sends the
// keep-alive pings.
//
// Message Protocol:
//
// Outbound frames are JSON Message values. The first frame on a connection is
// a "welcome" event carrying the client id, after that every state change of
// the session arrives as a "state_update" with the full GameState.
//
// Inbound frames are commands:
//
//	{"type": "move", "player": "A", "row": 0, "col": 3}
//	{"type": "wall", "player": "B", "row": 4, "col": 2}
//	{"type": "reset"}
//
// Coordinates are 0-indexed. A move command is the same two-step protocol as
// the REST API: the first move names the token, the second names the
// destination. Commands are handed to the CommandHandler installed with
// SetCommandHandler; a handler error is reported back to that client only as
// an "error" event.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.SetCommandHandler(handler)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
