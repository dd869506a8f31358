package service

import (
	"time"

	"github.com/wricardo/bloodflow/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// Action is one step of a scripted sequence
type Action struct {
	Type   string        `json:"type"` // "move" or "wall"
	Player engine.Player `json:"player"`
	Row    int           `json:"row"`
	Col    int           `json:"col"`
}

// Cell returns the action's target cell
func (a Action) Cell() engine.Cell {
	return engine.Cell{Row: a.Row, Col: a.Col}
}

// ActionResult contains the result of a single move or wall placement
type ActionResult struct {
	Success     bool                 `json:"success"`
	Result      engine.ResultKind    `json:"result"`
	Reason      engine.RejectionKind `json:"reason,omitempty"`
	Termination *engine.Termination  `json:"termination,omitempty"`
	Message     string               `json:"message"`
	GameState   *engine.GameState    `json:"game_state"`
	Events      []GameEvent          `json:"events,omitempty"`

	// LegalDestinations is filled after a selection so callers know where the token may go
	LegalDestinations []engine.Cell `json:"legal_destinations,omitempty"`
}

// PlayResult contains the result of a scripted sequence of actions
type PlayResult struct {
	ActionsExecuted  int               `json:"actions_executed"`
	RequestedActions int               `json:"requested_actions"`
	Success          bool              `json:"success"`
	GameState        *engine.GameState `json:"game_state"`
	Events           []GameEvent       `json:"events"`
	StoppedReason    string            `json:"stopped_reason,omitempty"`
	StopReasonCode   string            `json:"stop_reason_code,omitempty"` // a rejection kind, "game_over" or "invalid_action"
	StoppedOnAction  int               `json:"stopped_on_action,omitempty"`
	Truncated        bool              `json:"truncated,omitempty"`
	Limit            int               `json:"limit,omitempty"`

	StartStock int `json:"start_stock"`
	EndStock   int `json:"end_stock"`

	Steps []StepInfo `json:"steps,omitempty"`

	GameOver    bool                `json:"game_over"`
	Termination *engine.Termination `json:"termination,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// StepInfo is a compact record of one executed action in a scripted sequence
type StepInfo struct {
	Idx        int                  `json:"idx"`
	Type       string               `json:"type"`
	Player     engine.Player        `json:"player"`
	Target     engine.Cell          `json:"target"`
	From       *engine.Cell         `json:"from,omitempty"`
	Result     engine.ResultKind    `json:"result"`
	Reason     engine.RejectionKind `json:"reason,omitempty"`
	TurnAfter  engine.Player        `json:"turn_after"`
	StockAfter int                  `json:"stock_after"`
}

// Event types
const (
	EventSelect         = "select"
	EventMove           = "move"
	EventWall           = "wall"
	EventRejected       = "rejected"
	EventCrossing       = "crossing"
	EventBlockade       = "blockade"
	EventStockExhausted = "stock_exhausted"
	EventReset          = "reset"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Player    engine.Player `json:"player,omitempty"`
	Cell      *engine.Cell  `json:"cell,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	WallStock   int    `json:"wall_stock"`
}
