package engine

import "fmt"

// Player identifies one of the two token owners
type Player string

const (
	PlayerA Player = "A"
	PlayerB Player = "B"

	// Validation constants
	MinRows            = 2
	MinCols            = 1
	MaxBoardSize       = 50
	MaxScriptedActions = 50

	// Reference configuration
	DefaultRows      = 9
	DefaultCols      = 7
	DefaultWallStock = 10
)

// Opponent returns the other player
func (p Player) Opponent() Player {
	if p == PlayerA {
		return PlayerB
	}
	return PlayerA
}

// Valid reports whether p is A or B
func (p Player) Valid() bool {
	return p == PlayerA || p == PlayerB
}

// ParsePlayer converts "a"/"A"/"b"/"B" into a Player
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "A", "a":
		return PlayerA, nil
	case "B", "b":
		return PlayerB, nil
	}
	return "", fmt.Errorf("unknown player %q", s)
}

// Cell is a 0-indexed board coordinate
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String renders the cell 1-based, the way players read the board
func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row+1, c.Col+1)
}

// Square is a single board square
type Square struct {
	Wall bool `json:"wall"`
}

// RejectionKind tells the caller why an action was refused
type RejectionKind string

const (
	NotCurrentPlayer    RejectionKind = "not_current_player"
	NotOwnPiece         RejectionKind = "not_own_piece"
	IllegalDestination  RejectionKind = "illegal_destination"
	CellOccupiedByWall  RejectionKind = "cell_occupied_by_wall"
	CellOccupiedByToken RejectionKind = "cell_occupied_by_token"
	CellOutOfBounds     RejectionKind = "cell_out_of_bounds"
	StockDepleted       RejectionKind = "stock_depleted"
	GameAlreadyEnded    RejectionKind = "game_already_ended"
)

// TerminationReason says how a game ended
type TerminationReason string

const (
	Crossing       TerminationReason = "crossing"
	Blockade       TerminationReason = "blockade"
	StockExhausted TerminationReason = "stock_exhausted"
)

// Termination describes an ended game. Winner is empty for StockExhausted.
type Termination struct {
	Reason TerminationReason `json:"reason"`
	Winner Player            `json:"winner,omitempty"`
}

// Phase is either in progress or ended
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseEnded      Phase = "ended"
)

// ResultKind classifies an Outcome
type ResultKind string

const (
	ResultAccepted ResultKind = "accepted"
	ResultSelected ResultKind = "selected"
	ResultRejected ResultKind = "rejected"
)

// Action names used in history and scripted play
const (
	ActionMove  = "move"
	ActionWall  = "wall"
	ActionReset = "reset"
)

// Outcome is returned by every engine command
type Outcome struct {
	Accepted    bool          `json:"accepted"`
	Result      ResultKind    `json:"result"`
	Reason      RejectionKind `json:"reason,omitempty"`
	Terminal    *Termination  `json:"terminal,omitempty"`
	Message     string        `json:"message"`
	State       *GameState    `json:"-"`
	Player      Player        `json:"player"`
	Target      Cell          `json:"target"`
	From        *Cell         `json:"from,omitempty"`
	TurnChanged bool          `json:"turn_changed"`
}

// GameState represents the complete game state
type GameState struct {
	Rows         int          `json:"rows"`
	Cols         int          `json:"cols"`
	Board        [][]Square   `json:"board"`
	TokenA       Cell         `json:"token_a"`
	TokenB       Cell         `json:"token_b"`
	Stock        int          `json:"stock"`
	InitialStock int          `json:"initial_stock"`
	Turn         Player       `json:"turn"`
	Phase        Phase        `json:"phase"`
	Termination  *Termination `json:"termination,omitempty"`
	Selection    *Cell        `json:"selection,omitempty"`
	Message      string       `json:"message"`
	ConfigName   string       `json:"config_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the attempts since the last reset. MoveHistory stays cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry records a single attempted command
type MoveHistoryEntry struct {
	ID         string        `json:"id"`
	Action     string        `json:"action"`
	Player     Player        `json:"player"`
	Target     Cell          `json:"target"`
	From       *Cell         `json:"from,omitempty"`
	Result     ResultKind    `json:"result"`
	Reason     RejectionKind `json:"reason,omitempty"`
	StockAfter int           `json:"stock_after"`
	Timestamp  int64         `json:"timestamp"`
	MoveNumber int           `json:"move_number"`
}
