package engine

import (
	"time"

	"github.com/google/uuid"
)

// orthogonal steps: up, down, left, right
var directions = []struct{ dr, dc int }{
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
}

// InBounds reports whether c lies on the board
func (gs *GameState) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < gs.Rows && c.Col >= 0 && c.Col < gs.Cols
}

// IsWall reports whether c holds a wall. Out-of-bounds cells are not walls.
func (gs *GameState) IsWall(c Cell) bool {
	if !gs.InBounds(c) {
		return false
	}
	return gs.Board[c.Row][c.Col].Wall
}

// TokenAt returns the owner of the token on c, if any
func (gs *GameState) TokenAt(c Cell) (Player, bool) {
	switch c {
	case gs.TokenA:
		return PlayerA, true
	case gs.TokenB:
		return PlayerB, true
	}
	return "", false
}

// IsOccupied reports whether either token sits on c
func (gs *GameState) IsOccupied(c Cell) bool {
	_, ok := gs.TokenAt(c)
	return ok
}

// TokenPosition returns the cell of p's token
func (gs *GameState) TokenPosition(p Player) Cell {
	if p == PlayerA {
		return gs.TokenA
	}
	return gs.TokenB
}

func (gs *GameState) setToken(p Player, c Cell) {
	if p == PlayerA {
		gs.TokenA = c
		return
	}
	gs.TokenB = c
}

// LegalDestinations lists the orthogonal neighbours of from that are on the
// board, free of walls and free of both tokens. Move validation and the
// blockade check share it; it looks one step ahead only.
func (gs *GameState) LegalDestinations(from Cell) []Cell {
	dests := make([]Cell, 0, len(directions))
	for _, d := range directions {
		c := Cell{Row: from.Row + d.dr, Col: from.Col + d.dc}
		if !gs.InBounds(c) || gs.IsWall(c) || gs.IsOccupied(c) {
			continue
		}
		dests = append(dests, c)
	}
	return dests
}

// CanMoveTo reports whether target is a legal destination from from
func (gs *GameState) CanMoveTo(from, target Cell) bool {
	for _, c := range gs.LegalDestinations(from) {
		if c == target {
			return true
		}
	}
	return false
}

// HasCrossed reports whether p's token stands on the opponent's home row
func (gs *GameState) HasCrossed(p Player) bool {
	if p == PlayerA {
		return gs.TokenA.Row == gs.Rows-1
	}
	return gs.TokenB.Row == 0
}

// IsBlockaded reports whether p's token has no legal destination
func (gs *GameState) IsBlockaded(p Player) bool {
	return len(gs.LegalDestinations(gs.TokenPosition(p))) == 0
}

// IsOver reports whether the game has ended
func (gs *GameState) IsOver() bool {
	return gs.Phase == PhaseEnded
}

// end moves the game into its terminal phase
func (gs *GameState) end(t *Termination) {
	gs.Phase = PhaseEnded
	gs.Termination = t
	gs.Selection = nil
}

// AddMoveToHistory appends an attempt to both the cumulative and current histories
func (gs *GameState) AddMoveToHistory(action string, player Player, target Cell, from *Cell, result ResultKind, reason RejectionKind) MoveHistoryEntry {
	entry := MoveHistoryEntry{
		ID:         uuid.NewString(),
		Action:     action,
		Player:     player,
		Target:     target,
		From:       from,
		Result:     result,
		Reason:     reason,
		StockAfter: gs.Stock,
		Timestamp:  time.Now().Unix(),
		MoveNumber: gs.TotalMoves + 1,
	}
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++

	return entry
}
