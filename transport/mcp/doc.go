// Package mcp exposes the Blood Flow REST API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes one or two HTTP calls
// against a running API server, and the reply is rendered as text with an
// ASCII board so an agent can read it directly.
//
// MCP Tools:
//   - create_session, get_session, list_sessions
//   - game_state: turn, stock, token positions and the board
//   - move: raw select-then-confirm command
//   - move_token: select and confirm in one call, via the scripted play endpoint
//   - place_wall: place a clot from the shared stock
//   - legal_moves: destinations of a token
//   - reset_game, move_history, list_configs, game_instructions
//
// Tool coordinates are 1-based, matching the status messages produced by the
// engine; the client converts them to the API's 0-based cells. Arguments are
// coerced with spf13/cast, so "3" and 3.0 are both accepted as 3.
//
// Transport Modes:
//
//	// Stdio
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP, as mounted by the serve command at /mcp
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
