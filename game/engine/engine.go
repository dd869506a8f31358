package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool

	// Commands
	AttemptMove(player Player, target Cell) Outcome
	AttemptPlaceWall(player Player, target Cell) Outcome

	// Queries
	LegalDestinations(from Cell) []Cell
	IsOccupied(c Cell) bool
	IsWall(c Cell) bool
	Dimensions() (rows, cols int)
	Stock() int
	Turn() Player
	Phase() Phase
	Termination() *Termination
	Selection() *Cell
	TokenPosition(p Player) Cell

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize commands per game.
type GameEngine struct {
	state    *GameState
	config   *GameConfig
	messages Messages
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config:   config,
		messages: config.Messages.withDefaults(),
		state:    InitGameStateFromConfig(config),
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the reference ruleset
func NewEngineWithDefaults() *GameEngine {
	config := DefaultConfig()
	return &GameEngine{
		config:   config,
		messages: config.Messages,
		state:    InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state (used for persistence loading). The state
// must be consistent with the engine's ruleset.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := state.Validate(e.config); err != nil {
		return err
	}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if state.CurrentMoves == nil {
		state.CurrentMoves = []MoveHistoryEntry{}
	}
	e.state = state
	return nil
}

// Reset restores the initial board, tokens, stock, turn and phase
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameStateFromConfig(e.config)
	e.state.Message = e.messages.Reset

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsGameOver returns whether the game has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsOver()
}

// AttemptMove runs one step of the two-step move protocol. With nothing
// selected the target must be the player's own token, which becomes the
// selection. With a selection pending the target must be one of its legal
// destinations; the selection is cleared either way.
func (e *GameEngine) AttemptMove(player Player, target Cell) Outcome {
	if out, ok := e.precheck(ActionMove, player, target); !ok {
		return out
	}

	gs := e.state
	if gs.Selection == nil {
		if gs.TokenPosition(player) != target {
			return e.reject(ActionMove, player, target, nil, NotOwnPiece, e.messages.NotOwnPiece)
		}
		sel := target
		gs.Selection = &sel
		gs.Message = e.messages.Selected
		gs.AddMoveToHistory(ActionMove, player, target, nil, ResultSelected, "")
		return Outcome{
			Result:  ResultSelected,
			Message: gs.Message,
			State:   gs,
			Player:  player,
			Target:  target,
		}
	}

	from := *gs.Selection
	gs.Selection = nil
	if !gs.CanMoveTo(from, target) {
		return e.reject(ActionMove, player, target, &from, IllegalDestination, e.messages.InvalidMove)
	}

	gs.setToken(player, target)

	var term *Termination
	switch {
	case gs.HasCrossed(player):
		term = &Termination{Reason: Crossing, Winner: player}
		gs.Message = fmt.Sprintf(e.messages.Crossing, player)
	case gs.IsBlockaded(player.Opponent()):
		term = &Termination{Reason: Blockade, Winner: player}
		gs.Message = fmt.Sprintf(e.messages.Blockade, player)
	default:
		gs.Message = fmt.Sprintf(e.messages.Moved, player.Opponent())
	}

	return e.accept(ActionMove, player, target, &from, term)
}

// AttemptPlaceWall puts a wall on target, consuming one unit of the shared stock
func (e *GameEngine) AttemptPlaceWall(player Player, target Cell) Outcome {
	if out, ok := e.precheck(ActionWall, player, target); !ok {
		return out
	}

	gs := e.state
	switch {
	case !gs.InBounds(target):
		return e.reject(ActionWall, player, target, nil, CellOutOfBounds, e.messages.OutOfBounds)
	case gs.IsWall(target):
		return e.reject(ActionWall, player, target, nil, CellOccupiedByWall, e.messages.DuplicateWall)
	case gs.IsOccupied(target):
		return e.reject(ActionWall, player, target, nil, CellOccupiedByToken, e.messages.WallOnToken)
	case gs.Stock <= 0:
		return e.reject(ActionWall, player, target, nil, StockDepleted, e.messages.StockDepleted)
	}

	gs.Board[target.Row][target.Col].Wall = true
	gs.Stock--
	gs.Selection = nil

	var term *Termination
	if gs.Stock == 0 {
		term = &Termination{Reason: StockExhausted}
		gs.Message = e.messages.StockExhausted
	} else {
		gs.Message = fmt.Sprintf(e.messages.WallPlaced, player, target.Row+1, target.Col+1)
	}

	return e.accept(ActionWall, player, target, nil, term)
}

// precheck rejects commands after the game ended or out of turn
func (e *GameEngine) precheck(action string, player Player, target Cell) (Outcome, bool) {
	if e.state.IsOver() {
		return e.reject(action, player, target, nil, GameAlreadyEnded, e.messages.GameOver), false
	}
	if player != e.state.Turn {
		return e.reject(action, player, target, nil, NotCurrentPlayer, fmt.Sprintf(e.messages.NotYourTurn, e.state.Turn)), false
	}
	return Outcome{}, true
}

func (e *GameEngine) reject(action string, player Player, target Cell, from *Cell, reason RejectionKind, message string) Outcome {
	gs := e.state
	gs.Message = message
	gs.AddMoveToHistory(action, player, target, from, ResultRejected, reason)
	return Outcome{
		Result:  ResultRejected,
		Reason:  reason,
		Message: message,
		State:   gs,
		Player:  player,
		Target:  target,
		From:    from,
	}
}

// accept records an accepted action and either ends the game or passes the turn
func (e *GameEngine) accept(action string, player Player, target Cell, from *Cell, term *Termination) Outcome {
	gs := e.state
	out := Outcome{
		Accepted: true,
		Result:   ResultAccepted,
		Terminal: term,
		State:    gs,
		Player:   player,
		Target:   target,
		From:     from,
	}

	if term != nil {
		gs.end(term)
	} else {
		gs.Turn = player.Opponent()
		out.TurnChanged = true
	}

	out.Message = gs.Message
	gs.AddMoveToHistory(action, player, target, from, ResultAccepted, "")
	return out
}

// LegalDestinations returns the legal destinations from an arbitrary cell
func (e *GameEngine) LegalDestinations(from Cell) []Cell {
	return e.state.LegalDestinations(from)
}

// IsOccupied reports whether a token stands on c
func (e *GameEngine) IsOccupied(c Cell) bool {
	return e.state.IsOccupied(c)
}

// IsWall reports whether c holds a wall
func (e *GameEngine) IsWall(c Cell) bool {
	return e.state.IsWall(c)
}

// Dimensions returns the board size
func (e *GameEngine) Dimensions() (rows, cols int) {
	return e.state.Rows, e.state.Cols
}

// Stock returns the remaining shared wall stock
func (e *GameEngine) Stock() int {
	return e.state.Stock
}

// Turn returns the player allowed to act next
func (e *GameEngine) Turn() Player {
	return e.state.Turn
}

// Phase returns the current game phase
func (e *GameEngine) Phase() Phase {
	return e.state.Phase
}

// Termination returns how the game ended, or nil while in progress
func (e *GameEngine) Termination() *Termination {
	return e.state.Termination
}

// Selection returns the pending selection, or nil
func (e *GameEngine) Selection() *Cell {
	return e.state.Selection
}

// TokenPosition returns where p's token stands
func (e *GameEngine) TokenPosition(p Player) Cell {
	return e.state.TokenPosition(p)
}

// GetConfig returns the current ruleset
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new ruleset and restarts the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.messages = config.Messages.withDefaults()
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetMoveHistory returns the complete attempt history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last recorded attempt, or nil if none
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
