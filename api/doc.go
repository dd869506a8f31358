// Package api provides the HTTP REST API for the Blood Flow game server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "fluxo"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Several sessions at once (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Select a token or confirm its destination
//   - POST /api/sessions/{id}/wall - Place a wall from the shared stock
//   - POST /api/sessions/{id}/play - Run a scripted sequence of actions
//   - POST /api/sessions/{id}/reset - Start a new game on the same session
//   - GET /api/sessions/{id}/history - Paginated move history (?page&limit&order)
//   - GET /api/sessions/{id}/legal - Legal destinations (?row&col, defaults to the player to move)
//
// Configuration:
//   - GET /api/configs - List rulesets
//   - POST /api/configs - Save a ruleset
//   - GET /api/configs/{name} - Get one ruleset
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket upgrade
//
// Moving a token takes two calls with the same body shape:
//
//	POST /api/sessions/a1b2/move {"player": "A", "row": 0, "col": 3}   // select
//	POST /api/sessions/a1b2/move {"player": "A", "row": 1, "col": 3}   // confirm
//
// Coordinates are 0-indexed on the wire. Game rejections are not HTTP errors:
// they come back as 200 with "success": false and a "reason" code such as
// "not_current_player" or "illegal_destination".
//
// Scripted play:
//
//	POST /api/sessions/a1b2/play
//	{
//	  "actions": [
//	    {"type": "move", "player": "A", "row": 0, "col": 3},
//	    {"type": "move", "player": "A", "row": 1, "col": 3},
//	    {"type": "wall", "player": "B", "row": 6, "col": 3}
//	  ],
//	  "reset": false
//	}
//
// The sequence stops at the first rejected action or when the game ends.
//
// Every call that changes a session broadcasts the new state to the session's
// WebSocket clients.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code: 404 for unknown
// sessions and rulesets, 400 for malformed bodies and invalid rulesets.
//
//	{"error": "session not found: a1b2"}
package api
