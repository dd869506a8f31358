package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:        "Test Config",
		Description: "A valid test configuration",
		Rows:        9,
		Cols:        7,
		WallStock:   10,
		Messages:    DefaultMessages(),
	}
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestValidateGameConfig_MissingName(t *testing.T) {
	config := createValidConfig()
	config.Name = ""
	err := ValidateGameConfig(config)
	if err == nil {
		t.Fatal("Expected error for missing name")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("Expected name validation error, got: %v", err)
	}
}

func TestValidateGameConfig_MissingDescription(t *testing.T) {
	config := createValidConfig()
	config.Description = ""
	err := ValidateGameConfig(config)
	if err == nil {
		t.Fatal("Expected error for missing description")
	}
	if !strings.Contains(err.Error(), "description is required") {
		t.Errorf("Expected description validation error, got: %v", err)
	}
}

func TestValidateGameConfig_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		expected   string
	}{
		{"one row", 1, 7, "rows must be between"},
		{"too many rows", 51, 7, "rows must be between"},
		{"no cols", 9, 0, "cols must be between"},
		{"too many cols", 9, 51, "cols must be between"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			config.Rows = test.rows
			config.Cols = test.cols
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatalf("Expected error for %dx%d", test.rows, test.cols)
			}
			if !strings.Contains(err.Error(), test.expected) {
				t.Errorf("Expected error containing '%s', got: %v", test.expected, err)
			}
		})
	}
}

func TestValidateGameConfig_WallStock(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		wantErr bool
	}{
		{"zero", 0, false},
		{"reference", 10, false},
		{"every free cell", 61, false},
		{"negative", -1, true},
		{"more than free cells", 62, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			config.WallStock = test.stock
			err := ValidateGameConfig(config)
			if (err != nil) != test.wantErr {
				t.Errorf("stock %d: wantErr=%v, got %v", test.stock, test.wantErr, err)
			}
			if err != nil && !strings.Contains(err.Error(), "wall_stock must be between") {
				t.Errorf("Expected wall_stock validation error, got: %v", err)
			}
		})
	}
}

func TestValidateGameConfig_StartCellsMustMove(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantErr    string
	}{
		{"tokens face each other", 2, 1, "player A cannot move from its start cell (1, 1)"},
		{"single column", 3, 1, ""},
		{"two rows", 2, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			config.Rows = tt.rows
			config.Cols = tt.cols
			config.WallStock = 0

			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error for %dx%d: %v", tt.rows, tt.cols, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
			if _, err := NewEngine(config); err == nil {
				t.Error("Expected NewEngine to reject the ruleset")
			}
		})
	}
}

func TestValidateGameConfig_FormatStrings(t *testing.T) {
	tests := []struct {
		name     string
		modifier func(*GameConfig)
		expected string
	}{
		{"moved", func(c *GameConfig) { c.Messages.Moved = "No format" }, "messages.moved"},
		{"wall placed", func(c *GameConfig) { c.Messages.WallPlaced = "Wall by %s" }, "messages.wall_placed"},
		{"crossing", func(c *GameConfig) { c.Messages.Crossing = "Someone won" }, "messages.crossing"},
		{"blockade", func(c *GameConfig) { c.Messages.Blockade = "Blocked" }, "messages.blockade"},
		{"not your turn", func(c *GameConfig) { c.Messages.NotYourTurn = "Wait" }, "messages.not_your_turn"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.modifier(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatalf("Expected error for %s format string", test.name)
			}
			if !strings.Contains(err.Error(), test.expected) {
				t.Errorf("Expected format string validation error containing '%s', got: %v", test.expected, err)
			}
		})
	}
}

func TestValidateGameConfig_EmptyMessagesAllowed(t *testing.T) {
	config := createValidConfig()
	config.Messages = Messages{}
	if err := ValidateGameConfig(config); err != nil {
		t.Errorf("Empty templates fall back to defaults, got: %v", err)
	}
}

func TestMessagesWithDefaults(t *testing.T) {
	m := Messages{Welcome: "Bem-vindo"}.withDefaults()
	if m.Welcome != "Bem-vindo" {
		t.Errorf("Expected custom welcome to survive, got %q", m.Welcome)
	}
	if m.Crossing != DefaultMessages().Crossing {
		t.Errorf("Expected default crossing text, got %q", m.Crossing)
	}
}

func TestDecodeGameConfig(t *testing.T) {
	yamlData := `
name: fluxo
description: Tabuleiro de teste
rows: 5
cols: 3
wall_stock: 4
messages:
  welcome: "Bem-vindo!"
  moved: "Jogador %s a jogar."
`
	config, err := DecodeGameConfig([]byte(yamlData), ".yaml")
	if err != nil {
		t.Fatalf("Failed to decode yaml: %v", err)
	}
	if config.Name != "fluxo" || config.Rows != 5 || config.Cols != 3 || config.WallStock != 4 {
		t.Errorf("Unexpected yaml config %+v", config)
	}
	if config.Messages.Moved != "Jogador %s a jogar." {
		t.Errorf("Unexpected moved template %q", config.Messages.Moved)
	}

	jsonData := `{"name":"j","description":"d","rows":3,"cols":3,"wall_stock":1,"messages":{"welcome":"hi"}}`
	config, err = DecodeGameConfig([]byte(jsonData), ".JSON")
	if err != nil {
		t.Fatalf("Failed to decode json: %v", err)
	}
	if config.Messages.Welcome != "hi" || config.WallStock != 1 {
		t.Errorf("Unexpected json config %+v", config)
	}

	if _, err := DecodeGameConfig([]byte("{not json"), ".json"); err == nil {
		t.Error("Expected error for malformed json")
	}
	if _, err := DecodeGameConfig([]byte("rows: [1"), ".yml"); err == nil {
		t.Error("Expected error for malformed yaml")
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	tempFile := filepath.Join(dir, "test_config.json")

	configContent := `{
		"name": "Test Config",
		"description": "Test description",
		"rows": 9,
		"cols": 7,
		"wall_stock": 10,
		"messages": {
			"welcome": "Welcome!",
			"moved": "Player %s next."
		}
	}`

	if err := os.WriteFile(tempFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadGameConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}
	if config.Rows != 9 || config.Cols != 7 {
		t.Errorf("Expected 9x7, got %dx%d", config.Rows, config.Cols)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("name: bad\ndescription: d\nrows: 1\ncols: 7\n"), 0644); err != nil {
		t.Fatalf("Failed to create invalid config file: %v", err)
	}
	if _, err := LoadGameConfig(invalid); err == nil {
		t.Error("Expected validation error for invalid yaml config")
	}

	if _, err := LoadGameConfig(filepath.Join(dir, "nonexistent.json")); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestStartCell(t *testing.T) {
	config := createValidConfig()
	if got := StartCell(config, PlayerA); got != (Cell{Row: 0, Col: 3}) {
		t.Errorf("Expected A at (0,3), got %+v", got)
	}
	if got := StartCell(config, PlayerB); got != (Cell{Row: 8, Col: 3}) {
		t.Errorf("Expected B at (8,3), got %+v", got)
	}

	config.Rows = 2
	config.Cols = 1
	if StartCell(config, PlayerA) == StartCell(config, PlayerB) {
		t.Error("Tokens must not share a start cell on the smallest board")
	}
}

func TestInitGameStateFromConfig(t *testing.T) {
	config := createValidConfig()
	config.WallStock = 3
	state := InitGameStateFromConfig(config)

	if state.Stock != 3 || state.InitialStock != 3 {
		t.Errorf("Expected stock 3/3, got %d/%d", state.Stock, state.InitialStock)
	}
	if len(state.Board) != 9 || len(state.Board[0]) != 7 {
		t.Errorf("Expected 9x7 board, got %dx%d", len(state.Board), len(state.Board[0]))
	}
	if state.Selection != nil || state.Termination != nil {
		t.Error("Expected no selection or termination initially")
	}
	if state.ConfigName != "Test Config" {
		t.Errorf("Expected config name to be recorded, got %q", state.ConfigName)
	}
	if state.Message != config.Messages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.MoveHistory == nil || state.CurrentMoves == nil {
		t.Error("Expected histories to be initialized")
	}

	defaultState := InitGameStateFromConfig(nil)
	if defaultState.Rows != DefaultRows || defaultState.Stock != DefaultWallStock {
		t.Errorf("Expected default 9x7/10, got %dx%d/%d", defaultState.Rows, defaultState.Cols, defaultState.Stock)
	}
}
