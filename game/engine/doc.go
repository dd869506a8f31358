// Package engine provides the core rule engine for the Blood Flow board game.
//
// The engine package implements the game mechanics including:
//   - Board, token and wall state for a rectangular grid
//   - The two-step move protocol (select own token, then confirm a destination)
//   - Wall placement from a finite stock shared by both players
//   - Turn alternation and the three endings: crossing, blockade, stock exhaustion
//   - Ruleset loading and validation (JSON or YAML)
//
// Core Types:
//
// The Engine interface defines the command and query surface, implemented by
// GameEngine. GameState holds the board, tokens, stock, turn, phase and pending
// selection; GameConfig is the ruleset (board size, wall stock, status texts).
// Every command returns an Outcome that is either accepted, a selection, or a
// rejection carrying a RejectionKind.
//
// Usage:
//
//	gameEngine := engine.NewEngineWithDefaults()
//
//	// Pick up A's token, then move it one row down
//	gameEngine.AttemptMove(engine.PlayerA, engine.Cell{Row: 0, Col: 3})
//	out := gameEngine.AttemptMove(engine.PlayerA, engine.Cell{Row: 1, Col: 3})
//	if !out.Accepted {
//		fmt.Println(out.Reason)
//	}
//
//	// B spends a wall instead of moving
//	gameEngine.AttemptPlaceWall(engine.PlayerB, engine.Cell{Row: 2, Col: 3})
//
// Game Rules:
//
// A starts on the top row and B on the bottom row, both in the middle column.
// A token moves one cell up, down, left or right onto a cell that holds neither
// a wall nor the other token. Reaching the opponent's home row wins. Leaving the
// opponent without any legal destination after your move also wins. The game
// ends without a winner the moment the last wall of the shared stock is placed.
//
// The blockade check only looks at the four neighbouring cells; it is not a
// path search, so a token that can still step somewhere is never considered
// trapped.
package engine
