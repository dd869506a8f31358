// Package render draws a game state for terminals using termenv.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/wricardo/bloodflow/game/engine"
)

// ANSI palette indexes
const (
	colorA         = "4" // blue
	colorB         = "1" // red
	colorWall      = "9"
	colorSelection = "3"
	colorMuted     = "8"
)

// Board writes the grid and a status line for state to out.
// Rows and columns are labelled 1-based.
func Board(out *termenv.Output, state *engine.GameState) error {
	if state == nil {
		return fmt.Errorf("render: nil state")
	}

	var b strings.Builder
	b.WriteString("    ")
	for c := 0; c < state.Cols; c++ {
		b.WriteString(out.String(fmt.Sprintf("%d", (c+1)%10)).Foreground(out.Color(colorMuted)).String())
	}
	b.WriteString("\n")

	for r := 0; r < state.Rows; r++ {
		b.WriteString(out.String(fmt.Sprintf("%3d ", r+1)).Foreground(out.Color(colorMuted)).String())
		for c := 0; c < state.Cols; c++ {
			b.WriteString(square(out, state, engine.Cell{Row: r, Col: c}))
		}
		b.WriteString("\n")
	}

	b.WriteString(Status(out, state))
	b.WriteString("\n")

	_, err := io.WriteString(out, b.String())
	return err
}

// square renders one cell. A selected token is drawn lower case.
func square(out *termenv.Output, state *engine.GameState, cell engine.Cell) string {
	selected := state.Selection != nil && *state.Selection == cell

	if p, ok := state.TokenAt(cell); ok {
		glyph := string(p)
		color := colorA
		if p == engine.PlayerB {
			color = colorB
		}
		style := out.String(glyph).Foreground(out.Color(color)).Bold()
		if selected {
			style = out.String(strings.ToLower(glyph)).Foreground(out.Color(colorSelection)).Bold().Underline()
		}
		return style.String()
	}
	if state.IsWall(cell) {
		return out.String(string(engine.GlyphWall)).Foreground(out.Color(colorWall)).String()
	}
	return out.String(string(engine.GlyphEmpty)).Foreground(out.Color(colorMuted)).String()
}

// Status returns the one or two line summary printed under the board
func Status(out *termenv.Output, state *engine.GameState) string {
	var b strings.Builder
	if state.Termination != nil {
		b.WriteString(out.String(Termination(state.Termination)).Bold().String())
	} else {
		fmt.Fprintf(&b, "Turn: %s | Clots left: %d/%d", state.Turn, state.Stock, state.InitialStock)
		if state.Selection != nil {
			fmt.Fprintf(&b, " | Selected %s", state.Selection)
		}
	}
	if state.Message != "" {
		b.WriteString("\n")
		b.WriteString(state.Message)
	}
	return b.String()
}

// Termination describes how a game ended
func Termination(t *engine.Termination) string {
	switch t.Reason {
	case engine.Crossing:
		return fmt.Sprintf("Game over: player %s crossed the board", t.Winner)
	case engine.Blockade:
		return fmt.Sprintf("Game over: player %s wins by blockade", t.Winner)
	case engine.StockExhausted:
		return "Game over: clot stock exhausted, no winner"
	}
	return "Game over"
}
