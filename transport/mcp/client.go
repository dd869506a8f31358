package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
)

var logger = log15.New("module", "mcp")

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Blood Flow",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Blood Flow - MCP Interface

Two players share a board. Player A starts on the top row, player B on the
bottom row. Each turn the player to move either moves their token one step
(orthogonally) or places a clot (wall) from the shared stock.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: session management
- game_state: board, turn, stock and status
- move_token: move a token in one call (select + confirm)
- move: raw two-step protocol, first call selects, second confirms
- place_wall: place a clot on an empty cell
- legal_moves: where a token may go
- reset_game, move_history, list_configs
- game_instructions: full rules

All coordinates are 1-based: row 1 is the top row, column 1 the leftmost.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func playerProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"A", "B"},
		"description": "Player issuing the command",
	}
}

func coordProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     1,
		"description": desc,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional ruleset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Ruleset to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, turn, wall stock and status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Raw move command. Naming your own token's cell selects it; naming an adjacent empty cell while a token is selected moves it there.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"player":     playerProperty(),
				"row":        coordProperty("Row (1-based)"),
				"col":        coordProperty("Column (1-based)"),
			},
			Required: []string{"session_id", "player", "row", "col"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_token",
		Description: "Move your token to an adjacent cell in one call",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"player":     playerProperty(),
				"to_row":     coordProperty("Destination row (1-based)"),
				"to_col":     coordProperty("Destination column (1-based)"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you are making this move",
				},
			},
			Required: []string{"session_id", "player", "to_row", "to_col"},
		},
	}, c.handleMoveToken)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_wall",
		Description: "Place a clot (wall) on an empty cell. Uses one unit of the shared stock and ends your turn.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"player":     playerProperty(),
				"row":        coordProperty("Row (1-based)"),
				"col":        coordProperty("Column (1-based)"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you are placing this clot",
				},
			},
			Required: []string{"session_id", "player", "row", "col"},
		},
	}, c.handlePlaceWall)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the cells a token may move to. Without coordinates, answers for the player to move.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row":        coordProperty("Token row (1-based, optional)"),
				"col":        coordProperty("Token column (1-based, optional)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start a new game on the same session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rulesets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument helpers

func stringArg(args map[string]interface{}, key string) string {
	return strings.TrimSpace(cast.ToString(args[key]))
}

func requiredString(args map[string]interface{}, key string) (string, error) {
	s := stringArg(args, key)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func playerArg(args map[string]interface{}) (engine.Player, error) {
	return engine.ParsePlayer(stringArg(args, "player"))
}

// cellArg reads a 1-based row/column pair and returns the 0-based cell
func cellArg(args map[string]interface{}, rowKey, colKey string) (engine.Cell, error) {
	row, err := cast.ToIntE(args[rowKey])
	if err != nil {
		return engine.Cell{}, fmt.Errorf("%s must be an integer: %v", rowKey, err)
	}
	col, err := cast.ToIntE(args[colKey])
	if err != nil {
		return engine.Cell{}, fmt.Errorf("%s must be an integer: %v", colKey, err)
	}
	return engine.Cell{Row: row - 1, Col: col - 1}, nil
}

func hasArg(args map[string]interface{}, key string) bool {
	v, ok := args[key]
	return ok && v != nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if configName := stringArg(args, "config_name"); configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	logger.Debug("session created", "session", session.ID)
	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.Phase == engine.PhaseEnded {
			status = "ended"
		}
		fmt.Fprintf(&result, "- %s (Config: %s, %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requiredString(request.GetArguments(), "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requiredString(request.GetArguments(), "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.singleAction(ctx, request, "/move")
}

func (c *Client) handlePlaceWall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.singleAction(ctx, request, "/wall")
}

func (c *Client) singleAction(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	player, err := playerArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cell, err := cellArg(args, "row", "col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"player": player,
		"row":    cell.Row,
		"col":    cell.Col,
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

// handleMoveToken runs select and confirm as one scripted sequence
func (c *Client) handleMoveToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	player, err := playerArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := cellArg(args, "to_row", "to_col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from := state.TokenA
	if player == engine.PlayerB {
		from = state.TokenB
	}

	body := map[string]interface{}{
		"actions": []service.Action{
			{Type: engine.ActionMove, Player: player, Row: from.Row, Col: from.Col},
			{Type: engine.ActionMove, Player: player, Row: to.Row, Col: to.Col},
		},
	}

	var result service.PlayResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/play"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlayResult(&result)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path := sessionPath(sessionID, "/legal")
	if hasArg(args, "row") || hasArg(args, "col") {
		cell, err := cellArg(args, "row", "col")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path += fmt.Sprintf("?row=%d&col=%d", cell.Row, cell.Col)
	}

	var response struct {
		From         engine.Cell   `json:"from"`
		Destinations []engine.Cell `json:"destinations"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLegal(response.From, response.Destinations)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requiredString(request.GetArguments(), "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&result, "• %s (%s)\n  %s\n  Board: %d rows x %d cols, Clots: %d\n\n",
			cfg.ConfigID, cfg.Name, cfg.Description, cfg.Rows, cfg.Cols, cfg.WallStock)
	}

	return mcp.NewToolResultText(result.String()), nil
}

const instructions = `Blood Flow - Complete Instructions

GAME OBJECTIVE:
Get your token to the opposite edge of the board, or leave your opponent
with no way to move.

THE BOARD:
• A - Player A's token. Starts in the middle of the top row.
• B - Player B's token. Starts in the middle of the bottom row.
• # - Clot (wall). Nobody can enter or move through it.
• . - Empty cell.
Coordinates are 1-based: row 1 is the top row, column 1 the leftmost.

TURNS:
Player A moves first. On your turn you do exactly one of:
• Move your token one cell up, down, left or right onto an empty cell.
  Diagonal moves, jumps and moves onto the other token are not allowed.
• Place a clot on any empty cell. Clots come from a stock shared by both
  players; once placed they stay for the rest of the game.

MOVING IS TWO STEPS:
With the raw move tool, first name the cell of your own token to select it,
then name the destination. move_token does both steps in one call.
A rejected destination clears the selection.

HOW THE GAME ENDS:
• Crossing: A reaches the bottom row, or B reaches row 1. That player wins.
• Blockade: after a token move, the player now to move has no legal move.
  The player who just moved wins. A crossing is checked first.
• Stock exhausted: the last clot is placed and nobody has won. The game
  ends without a winner.

REJECTIONS:
Out-of-turn commands, selecting the wrong token, illegal destinations,
placing on an occupied cell and placing with an empty stock are rejected
without changing the board or the turn.

STRATEGY HINTS:
• Count the rows each token still has to cross; the shorter race usually wins.
• A clot right in front of the leading token costs it at least two moves.
• Every clot you place brings the no-winner ending closer.
• Use legal_moves before moving to avoid wasted calls.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// formatBoard draws the ASCII board with 1-based row and column labels
func formatBoard(state *engine.GameState) string {
	var b strings.Builder
	b.WriteString("    ")
	for c := 1; c <= state.Cols; c++ {
		fmt.Fprintf(&b, "%d", c%10)
	}
	b.WriteString("\n")
	for r, line := range engine.RenderASCII(state) {
		if state.Selection != nil && state.Selection.Row == r {
			// Mark the selected token in lower case
			runes := []rune(line)
			if c := state.Selection.Col; c >= 0 && c < len(runes) {
				runes[c] = []rune(strings.ToLower(string(runes[c])))[0]
			}
			line = string(runes)
		}
		fmt.Fprintf(&b, "%3d %s\n", r+1, line)
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Turn: %s | Clots left: %d/%d | A at %s | B at %s | Moves: %d\n\n",
		state.Turn, state.Stock, state.InitialStock, state.TokenA, state.TokenB, state.TotalMoves)
	result.WriteString(formatBoard(state))

	if state.Selection != nil {
		fmt.Fprintf(&result, "\nSelected token at %s (shown in lower case)\n", state.Selection)
	}

	if state.Phase == engine.PhaseEnded && state.Termination != nil {
		result.WriteString("\n" + formatTermination(state.Termination))
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatTermination(t *engine.Termination) string {
	switch t.Reason {
	case engine.Crossing:
		return fmt.Sprintf("🏁 GAME OVER: player %s crossed the board", t.Winner)
	case engine.Blockade:
		return fmt.Sprintf("🧱 GAME OVER: player %s wins by blockade", t.Winner)
	case engine.StockExhausted:
		return "⏹ GAME OVER: clot stock exhausted, no winner"
	}
	return "GAME OVER"
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder

	switch result.Result {
	case engine.ResultSelected:
		b.WriteString("✓ Token selected\n")
	case engine.ResultAccepted:
		b.WriteString("✓ Accepted\n")
	default:
		fmt.Fprintf(&b, "✗ Rejected: %s\n", result.Reason)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if len(result.LegalDestinations) > 0 {
		fmt.Fprintf(&b, "Legal destinations: %s\n", joinCells(result.LegalDestinations))
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatPlayResult(result *service.PlayResult) string {
	var b strings.Builder

	if result.Success {
		b.WriteString("✓ Move completed\n")
	} else {
		fmt.Fprintf(&b, "✗ Stopped on action %d: %s\n", result.StoppedOnAction, result.StoppedReason)
	}
	for _, step := range result.Steps {
		line := fmt.Sprintf("  %d. %s %s %s -> %s", step.Idx, step.Player, step.Type, step.Target, step.Result)
		if step.Reason != "" {
			line += " (" + string(step.Reason) + ")"
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatLegal(from engine.Cell, cells []engine.Cell) string {
	if len(cells) == 0 {
		return fmt.Sprintf("No legal destinations from %s", from)
	}
	return fmt.Sprintf("Legal destinations from %s: %s", from, joinCells(cells))
}

func joinCells(cells []engine.Cell) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		line := fmt.Sprintf("#%d: %s %s %s -> %s", move.MoveNumber, move.Player, move.Action, move.Target, move.Result)
		if move.Reason != "" {
			line += " (" + string(move.Reason) + ")"
		}
		fmt.Fprintf(&b, "%s, clots left %d\n", line, move.StockAfter)
	}

	return b.String()
}
