package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Messages holds the status text templates of a ruleset
type Messages struct {
	Welcome        string `json:"welcome" yaml:"welcome"`
	Selected       string `json:"selected" yaml:"selected"`
	NotOwnPiece    string `json:"not_own_piece" yaml:"not_own_piece"`
	InvalidMove    string `json:"invalid_move" yaml:"invalid_move"`
	Moved          string `json:"moved" yaml:"moved"`                     // %s next player
	WallPlaced     string `json:"wall_placed" yaml:"wall_placed"`         // %s player, %d row, %d col
	DuplicateWall  string `json:"duplicate_wall" yaml:"duplicate_wall"`
	WallOnToken    string `json:"wall_on_token" yaml:"wall_on_token"`
	OutOfBounds    string `json:"out_of_bounds" yaml:"out_of_bounds"`
	StockDepleted  string `json:"stock_depleted" yaml:"stock_depleted"`
	Crossing       string `json:"crossing" yaml:"crossing"`               // %s winner
	Blockade       string `json:"blockade" yaml:"blockade"`               // %s winner
	StockExhausted string `json:"stock_exhausted" yaml:"stock_exhausted"`
	NotYourTurn    string `json:"not_your_turn" yaml:"not_your_turn"`     // %s current player
	GameOver       string `json:"game_over" yaml:"game_over"`
	Reset          string `json:"reset" yaml:"reset"`
}

// GameConfig represents a ruleset loaded from JSON or YAML
type GameConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Rows        int      `json:"rows" yaml:"rows"`
	Cols        int      `json:"cols" yaml:"cols"`
	WallStock   int      `json:"wall_stock" yaml:"wall_stock"`
	Messages    Messages `json:"messages" yaml:"messages"`
}

// DefaultMessages returns the English status texts
func DefaultMessages() Messages {
	return Messages{
		Welcome:        "Welcome: player A moves first.",
		Selected:       "Piece selected: choose where to move (one orthogonal cell).",
		NotOwnPiece:    "Select your own piece to move.",
		InvalidMove:    "Invalid move: select again.",
		Moved:          "Move made. Player %s to play.",
		WallPlaced:     "Player %s placed a clot at (%d, %d).",
		DuplicateWall:  "There is already a clot in this cell.",
		WallOnToken:    "A clot cannot form on a pawn's cell.",
		OutOfBounds:    "That cell is outside the board.",
		StockDepleted:  "Wall stock exhausted.",
		Crossing:       "Player %s crossed the vessel and wins!",
		Blockade:       "Player %s completely blocked the opponent: victory by occlusion!",
		StockExhausted: "Hemorrhagic stroke: every clot has been used, the game is over.",
		NotYourTurn:    "It is player %s's turn.",
		GameOver:       "The game is over. Reset to play again.",
		Reset:          "Game reset: player A to play.",
	}
}

// DefaultConfig returns the reference 9x7 ruleset with 10 walls
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Reference board: 9 rows, 7 columns, 10 shared clots",
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		WallStock:   DefaultWallStock,
		Messages:    DefaultMessages(),
	}
}

// withDefaults returns a copy of m where every empty template is taken from the defaults
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Messages{
		Welcome:        pick(m.Welcome, d.Welcome),
		Selected:       pick(m.Selected, d.Selected),
		NotOwnPiece:    pick(m.NotOwnPiece, d.NotOwnPiece),
		InvalidMove:    pick(m.InvalidMove, d.InvalidMove),
		Moved:          pick(m.Moved, d.Moved),
		WallPlaced:     pick(m.WallPlaced, d.WallPlaced),
		DuplicateWall:  pick(m.DuplicateWall, d.DuplicateWall),
		WallOnToken:    pick(m.WallOnToken, d.WallOnToken),
		OutOfBounds:    pick(m.OutOfBounds, d.OutOfBounds),
		StockDepleted:  pick(m.StockDepleted, d.StockDepleted),
		Crossing:       pick(m.Crossing, d.Crossing),
		Blockade:       pick(m.Blockade, d.Blockade),
		StockExhausted: pick(m.StockExhausted, d.StockExhausted),
		NotYourTurn:    pick(m.NotYourTurn, d.NotYourTurn),
		GameOver:       pick(m.GameOver, d.GameOver),
		Reset:          pick(m.Reset, d.Reset),
	}
}

// ValidateGameConfig validates a ruleset for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Rows < MinRows || config.Rows > MaxBoardSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinRows, MaxBoardSize, config.Rows)
	}
	if config.Cols < MinCols || config.Cols > MaxBoardSize {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinCols, MaxBoardSize, config.Cols)
	}

	// Two cells always hold tokens
	maxStock := config.Rows*config.Cols - 2
	if config.WallStock < 0 || config.WallStock > maxStock {
		return fmt.Errorf("config validation: wall_stock must be between 0 and %d, got %d", maxStock, config.WallStock)
	}

	start := InitGameStateFromConfig(config)
	for _, p := range []Player{PlayerA, PlayerB} {
		if start.IsBlockaded(p) {
			return fmt.Errorf("config validation: player %s cannot move from its start cell %s", p, start.TokenPosition(p))
		}
	}

	m := config.Messages
	checks := []struct {
		key, tpl string
		verbs    []string
	}{
		{"moved", m.Moved, []string{"%s"}},
		{"wall_placed", m.WallPlaced, []string{"%s", "%d", "%d"}},
		{"crossing", m.Crossing, []string{"%s"}},
		{"blockade", m.Blockade, []string{"%s"}},
		{"not_your_turn", m.NotYourTurn, []string{"%s"}},
	}
	for _, c := range checks {
		if c.tpl == "" {
			continue
		}
		if err := checkVerbs(c.tpl, c.verbs); err != nil {
			return fmt.Errorf("config validation: messages.%s %v", c.key, err)
		}
	}

	return nil
}

// checkVerbs makes sure tpl carries at least as many of each verb as required
func checkVerbs(tpl string, verbs []string) error {
	need := map[string]int{}
	for _, v := range verbs {
		need[v]++
	}
	for verb, n := range need {
		if got := strings.Count(tpl, verb); got < n {
			return fmt.Errorf("must contain %d %s verb(s), got %d", n, verb, got)
		}
	}
	return nil
}

// DecodeGameConfig parses a ruleset; ext selects YAML (".yaml", ".yml") or JSON
func DecodeGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a ruleset file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := DecodeGameConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// StartCell returns the fixed starting cell of a player's token
func StartCell(config *GameConfig, p Player) Cell {
	if p == PlayerA {
		return Cell{Row: 0, Col: config.Cols / 2}
	}
	return Cell{Row: config.Rows - 1, Col: config.Cols / 2}
}

// InitGameStateFromConfig creates a fresh game state for the ruleset
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	board := make([][]Square, config.Rows)
	for i := range board {
		board[i] = make([]Square, config.Cols)
	}

	return &GameState{
		Rows:              config.Rows,
		Cols:              config.Cols,
		Board:             board,
		TokenA:            StartCell(config, PlayerA),
		TokenB:            StartCell(config, PlayerB),
		Stock:             config.WallStock,
		InitialStock:      config.WallStock,
		Turn:              PlayerA,
		Phase:             PhaseInProgress,
		Message:           config.Messages.withDefaults().Welcome,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
}
