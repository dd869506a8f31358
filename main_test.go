package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Blood Flow Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	if err := app.Run(context.Background(), []string{"bloodflow", "version"}); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != AppName+" v"+Version {
		t.Errorf("Unexpected version output %q", got)
	}
}

func TestInitializeServices(t *testing.T) {
	svc, err := initializeServices("configs", t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svc.game == nil || svc.sessions == nil || svc.persistence == nil {
		t.Fatal("Expected every service to be initialized")
	}

	info, err := svc.game.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.ConfigName != "classic" {
		t.Errorf("Expected classic ruleset by default, got %s", info.ConfigName)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", t.TempDir()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestPruneOrphans(t *testing.T) {
	svc, err := initializeServices("configs", t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	ctx := context.Background()
	kept, _ := svc.game.CreateSession(ctx, "")
	orphan, _ := svc.game.CreateSession(ctx, "")

	if err := svc.persistence.Delete(orphan.ID); err != nil {
		t.Fatalf("Failed to delete session file: %v", err)
	}

	if pruned := svc.pruneOrphans(); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := svc.sessions.Get(kept.ID); err != nil {
		t.Errorf("Session with a file should stay in memory: %v", err)
	}
	if svc.sessions.Count() != 1 {
		t.Errorf("Expected 1 session in memory, got %d", svc.sessions.Count())
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1"))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	handler(w, httptest.NewRequest(http.MethodPost, "/mcp", body))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), `"jsonrpc":"2.0"`) {
		t.Errorf("Expected a JSON-RPC response, got %s", w.Body.String())
	}
}

func TestProbeAPI(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("Unexpected probe path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if !probeAPI(context.Background(), healthy.URL, 1) {
		t.Error("Expected healthy server to be detected")
	}

	calls := 0
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if probeAPI(context.Background(), broken.URL, 2) {
		t.Error("Expected failing server to be rejected")
	}
	if calls != 2 {
		t.Errorf("Expected 2 probe attempts, got %d", calls)
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    engine.Cell
		wantErr bool
	}{
		{"top left", []string{"1", "1"}, engine.Cell{Row: 0, Col: 0}, false},
		{"center", []string{"5", "4"}, engine.Cell{Row: 4, Col: 3}, false},
		{"missing column", []string{"5"}, engine.Cell{}, true},
		{"bad row", []string{"x", "4"}, engine.Cell{}, true},
		{"bad column", []string{"5", "y"}, engine.Cell{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCell(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCell() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseCell() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadRuleset(t *testing.T) {
	cfg, err := loadRuleset("/non/existent/path", "")
	if err != nil || cfg.Name != "classic" {
		t.Errorf("Expected built-in ruleset without config dir, got %v, %v", cfg, err)
	}

	if _, err := loadRuleset("/non/existent/path", "fluxo"); err == nil {
		t.Error("Expected error for a named ruleset without config dir")
	}

	cfg, err = loadRuleset("configs", "fluxo")
	if err != nil {
		t.Fatalf("Failed to load fluxo: %v", err)
	}
	if cfg.Rows != engine.DefaultRows || cfg.Cols != engine.DefaultCols {
		t.Errorf("Unexpected fluxo dimensions %dx%d", cfg.Rows, cfg.Cols)
	}
}

func TestRunPlay(t *testing.T) {
	eng := engine.NewEngineWithDefaults()
	input := strings.Join([]string{
		"m 1 4", // A selects
		"m 2 4", // A moves down
		"x",
		"w five 3",
		"w 5 3", // B places a clot
		"m 9 4", // A tries to select B's token
		"l",
		"q",
		"m 3 4", // never read
	}, "\n")

	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))
	if err := runPlay(strings.NewReader(input), out, eng); err != nil {
		t.Fatalf("runPlay() error = %v", err)
	}

	state := eng.GetState()
	if state.TokenA != (engine.Cell{Row: 1, Col: 3}) {
		t.Errorf("Expected A at (1,3), got %v", state.TokenA)
	}
	if state.Stock != engine.DefaultWallStock-1 {
		t.Errorf("Expected one clot used, stock %d", state.Stock)
	}
	if state.Turn != engine.PlayerA {
		t.Errorf("Expected A to play, got %s", state.Turn)
	}

	output := buf.String()
	for _, want := range []string{
		"unknown command \"x\"",
		"invalid row \"five\"",
		"rejected: not_own_piece",
		"from (2, 4): ",
		"  5 ..#....",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRunPlayReset(t *testing.T) {
	eng := engine.NewEngineWithDefaults()

	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))
	if err := runPlay(strings.NewReader("w 5 3\nr\n"), out, eng); err != nil {
		t.Fatalf("runPlay() error = %v", err)
	}

	state := eng.GetState()
	if state.Stock != engine.DefaultWallStock || engine.CountWalls(state.Board) != 0 {
		t.Error("Reset should restore the empty board and full stock")
	}
	if len(state.MoveHistory) != 1 {
		t.Errorf("Reset should keep the cumulative history, got %d entries", len(state.MoveHistory))
	}
}
