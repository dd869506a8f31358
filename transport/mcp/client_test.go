package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
)

func newState() *engine.GameState {
	cfg := engine.DefaultConfig()
	return engine.InitGameStateFromConfig(cfg)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "a1b2"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/a1b2", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "a1b2" {
		t.Errorf("Expected id a1b2, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found: zzzz"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/json", nil, nil)
	if err == nil || err.Error() != "session not found: zzzz" {
		t.Errorf("Expected server error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		resp := service.SessionInfo{
			ID:         "a1b2",
			ConfigName: body["config_id"],
			GameState:  newState(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]interface{}{"config_name": "fluxo"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "a1b2") || !strings.Contains(text, "Config: fluxo") {
		t.Errorf("Expected session ID and config in result, got: %s", text)
	}
}

func TestClient_placeWall(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/a1b2/wall" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(service.ActionResult{
			Success:   true,
			Result:    engine.ResultAccepted,
			Message:   "Player A placed a clot at (5, 3).",
			GameState: newState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// JSON numbers arrive as float64, strings are coerced too
	args := map[string]interface{}{"session_id": "a1b2", "player": "a", "row": float64(5), "col": "3"}
	result, err := client.handlePlaceWall(context.Background(), callRequest("place_wall", args))
	if err != nil {
		t.Fatalf("placeWall failed: %v", err)
	}

	if got["player"] != "A" || got["row"] != float64(4) || got["col"] != float64(2) {
		t.Errorf("Expected 0-based A (4,2) on the wire, got %v", got)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "✓ Accepted") || !strings.Contains(text, "placed a clot") {
		t.Errorf("Unexpected result text: %s", text)
	}
}

func TestClient_argumentErrors(t *testing.T) {
	client := NewClient("http://localhost:1")
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"Missing session", map[string]interface{}{"player": "A", "row": 1, "col": 1}},
		{"Bad player", map[string]interface{}{"session_id": "a1b2", "player": "C", "row": 1, "col": 1}},
		{"Bad row", map[string]interface{}{"session_id": "a1b2", "player": "A", "row": "top", "col": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleMove(ctx, callRequest("move", tt.args))
			if err != nil {
				t.Fatalf("Expected tool error result, got Go error %v", err)
			}
			if !result.IsError {
				t.Error("Expected an error result")
			}
		})
	}
}

func TestClient_moveToken(t *testing.T) {
	state := newState()
	var actions []service.Action

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/sessions/a1b2/state":
			json.NewEncoder(w).Encode(state)
		case "/api/sessions/a1b2/play":
			var req struct {
				Actions []service.Action `json:"actions"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			actions = req.Actions
			json.NewEncoder(w).Encode(service.PlayResult{
				Success:         true,
				ActionsExecuted: 2,
				GameState:       state,
				Steps: []service.StepInfo{
					{Idx: 1, Type: "move", Player: engine.PlayerA, Target: state.TokenA, Result: engine.ResultSelected},
					{Idx: 2, Type: "move", Player: engine.PlayerA, Target: engine.Cell{Row: 1, Col: 3}, Result: engine.ResultAccepted},
				},
			})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	args := map[string]interface{}{"session_id": "a1b2", "player": "A", "to_row": 2, "to_col": 4}
	result, err := client.handleMoveToken(context.Background(), callRequest("move_token", args))
	if err != nil {
		t.Fatalf("moveToken failed: %v", err)
	}

	if len(actions) != 2 {
		t.Fatalf("Expected select and confirm actions, got %d", len(actions))
	}
	if actions[0].Cell() != state.TokenA || actions[1].Cell() != (engine.Cell{Row: 1, Col: 3}) {
		t.Errorf("Unexpected actions %+v", actions)
	}
	if text := resultText(t, result); !strings.Contains(text, "✓ Move completed") {
		t.Errorf("Unexpected result text: %s", text)
	}
}

func TestClient_legalMoves(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]interface{}{
			"from":         engine.Cell{Row: 0, Col: 3},
			"destinations": []engine.Cell{{Row: 1, Col: 3}, {Row: 0, Col: 2}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, _ := client.handleLegalMoves(context.Background(), callRequest("legal_moves", map[string]interface{}{"session_id": "a1b2", "row": 1, "col": 4}))
	if rawQuery != "row=0&col=3" {
		t.Errorf("Expected 0-based query, got %q", rawQuery)
	}
	if text := resultText(t, result); !strings.Contains(text, "(2, 4), (1, 3)") {
		t.Errorf("Expected 1-based destinations, got: %s", text)
	}

	client.handleLegalMoves(context.Background(), callRequest("legal_moves", map[string]interface{}{"session_id": "a1b2"}))
	if rawQuery != "" {
		t.Errorf("Expected no query without coordinates, got %q", rawQuery)
	}
}

func TestFormatGameState(t *testing.T) {
	state := newState()
	state.Board[4][2].Wall = true
	state.Stock = 9
	state.Message = "Player A placed a clot at (5, 3)."

	result := formatGameState(state)

	expectedFields := []string{
		"Turn: A",
		"Clots left: 9/10",
		"A at (1, 4)",
		"B at (9, 4)",
		"  1 ...A...",
		"  5 ..#....",
		"  9 ...B...",
		"Message: Player A placed a clot at (5, 3).",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got:\n%s", field, result)
		}
	}
}

func TestFormatGameState_Selection(t *testing.T) {
	state := newState()
	sel := state.TokenA
	state.Selection = &sel

	result := formatGameState(state)

	if !strings.Contains(result, "  1 ...a...") {
		t.Errorf("Expected selected token in lower case, got:\n%s", result)
	}
	if !strings.Contains(result, "Selected token at (1, 4)") {
		t.Errorf("Expected selection line, got:\n%s", result)
	}
}

func TestFormatGameState_Endings(t *testing.T) {
	tests := []struct {
		termination engine.Termination
		expected    string
	}{
		{engine.Termination{Reason: engine.Crossing, Winner: engine.PlayerB}, "player B crossed the board"},
		{engine.Termination{Reason: engine.Blockade, Winner: engine.PlayerA}, "player A wins by blockade"},
		{engine.Termination{Reason: engine.StockExhausted}, "no winner"},
	}

	for _, tt := range tests {
		state := newState()
		state.Phase = engine.PhaseEnded
		term := tt.termination
		state.Termination = &term

		if result := formatGameState(state); !strings.Contains(result, tt.expected) {
			t.Errorf("Expected %q in result, got:\n%s", tt.expected, result)
		}
	}

	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatActionResult_Rejected(t *testing.T) {
	result := formatActionResult(&service.ActionResult{
		Result:    engine.ResultRejected,
		Reason:    engine.NotCurrentPlayer,
		GameState: newState(),
	})

	if !strings.Contains(result, "✗ Rejected: not_current_player") {
		t.Errorf("Expected rejection reason, got: %s", result)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Blood Flow - Complete Instructions",
		"GAME OBJECTIVE:",
		"THE BOARD:",
		"MOVING IS TWO STEPS:",
		"HOW THE GAME ENDS:",
		"Stock exhausted",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
