package engine

import "strings"

// Board glyphs used by text renderings
const (
	GlyphEmpty = '.'
	GlyphWall  = '#'
)

// CountWalls counts the wall cells on the board
func CountWalls(board [][]Square) int {
	count := 0
	for _, row := range board {
		for _, sq := range row {
			if sq.Wall {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Cell) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// RowsToCross returns how many rows p's token still has to travel to reach
// the opponent's home row
func RowsToCross(gs *GameState, p Player) int {
	if p == PlayerA {
		return gs.Rows - 1 - gs.TokenA.Row
	}
	return gs.TokenB.Row
}

// RenderASCII draws the board one string per row: A and B for tokens,
// '#' for walls and '.' for empty cells
func RenderASCII(gs *GameState) []string {
	if gs == nil {
		return nil
	}
	lines := make([]string, 0, gs.Rows)
	for r := 0; r < gs.Rows; r++ {
		var b strings.Builder
		for c := 0; c < gs.Cols; c++ {
			cell := Cell{Row: r, Col: c}
			switch {
			case gs.TokenA == cell:
				b.WriteByte('A')
			case gs.TokenB == cell:
				b.WriteByte('B')
			case r < len(gs.Board) && c < len(gs.Board[r]) && gs.Board[r][c].Wall:
				b.WriteByte(GlyphWall)
			default:
				b.WriteByte(GlyphEmpty)
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
