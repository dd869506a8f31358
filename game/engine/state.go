package engine

import "fmt"

// Clone returns a deep copy of gs that shares nothing with it
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}

	c := *gs
	c.Board = make([][]Square, len(gs.Board))
	for i, row := range gs.Board {
		c.Board[i] = append([]Square(nil), row...)
	}
	if gs.Selection != nil {
		sel := *gs.Selection
		c.Selection = &sel
	}
	if gs.Termination != nil {
		term := *gs.Termination
		c.Termination = &term
	}
	c.MoveHistory = cloneHistory(gs.MoveHistory)
	c.CurrentMoves = cloneHistory(gs.CurrentMoves)
	return &c
}

func cloneHistory(entries []MoveHistoryEntry) []MoveHistoryEntry {
	if entries == nil {
		return nil
	}
	out := make([]MoveHistoryEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].From != nil {
			from := *out[i].From
			out[i].From = &from
		}
	}
	return out
}

// Validate checks that gs is a position the ruleset can reach: the board
// matches config, tokens stand on distinct free cells, walls on the board
// account for the spent stock, a selection is the mover's own token, and
// phase and termination agree.
func (gs *GameState) Validate(config *GameConfig) error {
	if gs.Rows != config.Rows || gs.Cols != config.Cols {
		return fmt.Errorf("state is %dx%d but config %q is %dx%d",
			gs.Rows, gs.Cols, config.Name, config.Rows, config.Cols)
	}
	if len(gs.Board) != gs.Rows {
		return fmt.Errorf("board has %d rows, expected %d", len(gs.Board), gs.Rows)
	}
	for i, row := range gs.Board {
		if len(row) != gs.Cols {
			return fmt.Errorf("board row %d has %d cells, expected %d", i+1, len(row), gs.Cols)
		}
	}

	if !gs.InBounds(gs.TokenA) || !gs.InBounds(gs.TokenB) || gs.TokenA == gs.TokenB {
		return fmt.Errorf("invalid token positions %v and %v", gs.TokenA, gs.TokenB)
	}
	for _, p := range []Player{PlayerA, PlayerB} {
		if gs.IsWall(gs.TokenPosition(p)) {
			return fmt.Errorf("token %s stands on a clot at %v", p, gs.TokenPosition(p))
		}
	}

	if gs.InitialStock != config.WallStock {
		return fmt.Errorf("initial stock %d does not match config %q stock %d", gs.InitialStock, config.Name, config.WallStock)
	}
	if gs.Stock < 0 || gs.Stock > gs.InitialStock {
		return fmt.Errorf("stock %d outside [0, %d]", gs.Stock, gs.InitialStock)
	}
	if walls := CountWalls(gs.Board); walls != gs.InitialStock-gs.Stock {
		return fmt.Errorf("board has %d clots but %d were spent", walls, gs.InitialStock-gs.Stock)
	}

	if !gs.Turn.Valid() {
		return fmt.Errorf("invalid turn %q", gs.Turn)
	}
	if gs.Selection != nil {
		if gs.IsOver() {
			return fmt.Errorf("ended game has a pending selection %v", *gs.Selection)
		}
		if *gs.Selection != gs.TokenPosition(gs.Turn) {
			return fmt.Errorf("selection %v is not player %s's token", *gs.Selection, gs.Turn)
		}
	}

	switch gs.Phase {
	case PhaseInProgress:
		if gs.Termination != nil {
			return fmt.Errorf("game in progress has a termination (%s)", gs.Termination.Reason)
		}
		if gs.InitialStock > 0 && gs.Stock == 0 {
			return fmt.Errorf("game in progress with no clots left")
		}
		if gs.HasCrossed(PlayerA) || gs.HasCrossed(PlayerB) {
			return fmt.Errorf("game in progress but a token already crossed")
		}
	case PhaseEnded:
		return gs.validateTermination()
	default:
		return fmt.Errorf("invalid phase %q", gs.Phase)
	}
	return nil
}

func (gs *GameState) validateTermination() error {
	t := gs.Termination
	if t == nil {
		return fmt.Errorf("ended game has no termination")
	}
	switch t.Reason {
	case Crossing:
		if !t.Winner.Valid() || !gs.HasCrossed(t.Winner) {
			return fmt.Errorf("crossing winner %q has not crossed", t.Winner)
		}
	case Blockade:
		if !t.Winner.Valid() || !gs.IsBlockaded(t.Winner.Opponent()) {
			return fmt.Errorf("blockade winner %q has not blocked the opponent", t.Winner)
		}
	case StockExhausted:
		if t.Winner != "" {
			return fmt.Errorf("stock exhaustion has no winner, got %q", t.Winner)
		}
		if gs.Stock != 0 {
			return fmt.Errorf("stock exhausted with %d clots left", gs.Stock)
		}
	default:
		return fmt.Errorf("invalid termination reason %q", t.Reason)
	}
	return nil
}
