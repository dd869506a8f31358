package main

import (
	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
)

var steps = []engine.Cell{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}}

// RaceStrategy runs for the far row and spends clots on the opponent's next
// step whenever the opponent is strictly closer to crossing.
type RaceStrategy struct {
	// KeepLast keeps the final clot in stock, since placing it ends the game
	// without a winner
	KeepLast bool
}

// NextActions returns the actions for the player to move: a select and a
// confirm for a move, or a single wall. It returns nil when the player can do
// nothing.
func (s RaceStrategy) NextActions(state *engine.GameState) []service.Action {
	if state == nil || state.IsOver() {
		return nil
	}

	me := state.Turn
	rival := state.TokenPosition(me.Opponent())
	mine := shortestPath(state, me)
	theirs := shortestPath(state, me.Opponent())

	spare := state.Stock > 0
	if s.KeepLast {
		spare = state.Stock > 1
	}

	switch {
	case mine == nil:
		// Cut off from the far row: slow the opponent, or burn the stock
		if state.Stock > 0 {
			if cell, ok := wallTarget(state, theirs, rival); ok {
				return []service.Action{wall(me, cell)}
			}
		}
		if dests := state.LegalDestinations(state.TokenPosition(me)); len(dests) > 0 {
			return move(me, state.TokenPosition(me), dests[0])
		}
		return nil
	case theirs != nil && len(theirs) < len(mine) && spare:
		if cell, ok := wallTarget(state, theirs, rival); ok && cell != mine[0] {
			return []service.Action{wall(me, cell)}
		}
	}

	return move(me, state.TokenPosition(me), mine[0])
}

// wallTarget picks the opponent's next step or, when the opponent has no
// route, the free cell closest to the opponent's token.
func wallTarget(state *engine.GameState, path []engine.Cell, rival engine.Cell) (engine.Cell, bool) {
	if len(path) > 0 && freeCell(state, path[0]) {
		return path[0], true
	}

	var best engine.Cell
	found := false
	for r := 0; r < state.Rows; r++ {
		for c := 0; c < state.Cols; c++ {
			cell := engine.Cell{Row: r, Col: c}
			if !freeCell(state, cell) {
				continue
			}
			if !found || engine.ManhattanDistance(cell, rival) < engine.ManhattanDistance(best, rival) {
				best, found = cell, true
			}
		}
	}
	return best, found
}

func freeCell(state *engine.GameState, c engine.Cell) bool {
	return state.InBounds(c) && !state.IsWall(c) && !state.IsOccupied(c)
}

// shortestPath returns the cells p's token walks through to reach its far
// row, excluding the start. It is nil when no route exists.
func shortestPath(state *engine.GameState, p engine.Player) []engine.Cell {
	start := state.TokenPosition(p)
	goal := state.Rows - 1
	if p == engine.PlayerB {
		goal = 0
	}

	prev := map[engine.Cell]engine.Cell{start: start}
	queue := []engine.Cell{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.Row == goal {
			var path []engine.Cell
			for c := current; c != start; c = prev[c] {
				path = append([]engine.Cell{c}, path...)
			}
			return path
		}

		for _, d := range steps {
			next := engine.Cell{Row: current.Row + d.Row, Col: current.Col + d.Col}
			if _, seen := prev[next]; seen || !freeCell(state, next) {
				continue
			}
			prev[next] = current
			queue = append(queue, next)
		}
	}
	return nil
}

func move(p engine.Player, from, to engine.Cell) []service.Action {
	return []service.Action{
		{Type: engine.ActionMove, Player: p, Row: from.Row, Col: from.Col},
		{Type: engine.ActionMove, Player: p, Row: to.Row, Col: to.Col},
	}
}

func wall(p engine.Player, c engine.Cell) service.Action {
	return service.Action{Type: engine.ActionWall, Player: p, Row: c.Row, Col: c.Col}
}
