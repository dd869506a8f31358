package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/wricardo/bloodflow/game/engine"
)

func asciiOutput(buf *bytes.Buffer) *termenv.Output {
	return termenv.NewOutput(buf, termenv.WithProfile(termenv.Ascii))
}

func TestBoard(t *testing.T) {
	state := engine.InitGameStateFromConfig(engine.DefaultConfig())
	state.Board[4][2].Wall = true
	state.Stock = 9

	var buf bytes.Buffer
	if err := Board(asciiOutput(&buf), state); err != nil {
		t.Fatalf("Board() error = %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	expected := []string{
		"    1234567",
		"  1 ...A...",
		"  2 .......",
		"  3 .......",
		"  4 .......",
		"  5 ..#....",
		"  6 .......",
		"  7 .......",
		"  8 .......",
		"  9 ...B...",
		"Turn: A | Clots left: 9/10",
	}
	if len(lines) < len(expected) {
		t.Fatalf("Expected at least %d lines, got %d:\n%s", len(expected), len(lines), buf.String())
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
	if !strings.Contains(buf.String(), state.Message) {
		t.Errorf("Expected status message %q in output", state.Message)
	}
}

func TestBoardSelection(t *testing.T) {
	state := engine.InitGameStateFromConfig(engine.DefaultConfig())
	state.Selection = &engine.Cell{Row: 0, Col: 3}

	var buf bytes.Buffer
	if err := Board(asciiOutput(&buf), state); err != nil {
		t.Fatalf("Board() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "  1 ...a...") {
		t.Errorf("Selected token should be drawn lower case:\n%s", out)
	}
	if !strings.Contains(out, "Selected (1, 4)") {
		t.Errorf("Status line should name the selection:\n%s", out)
	}
}

func TestBoardNilState(t *testing.T) {
	var buf bytes.Buffer
	if err := Board(asciiOutput(&buf), nil); err == nil {
		t.Error("Expected error for nil state")
	}
}

func TestStatusTermination(t *testing.T) {
	tests := []struct {
		name string
		term *engine.Termination
		want string
	}{
		{"crossing", &engine.Termination{Reason: engine.Crossing, Winner: engine.PlayerA}, "player A crossed the board"},
		{"blockade", &engine.Termination{Reason: engine.Blockade, Winner: engine.PlayerB}, "player B wins by blockade"},
		{"stock", &engine.Termination{Reason: engine.StockExhausted}, "clot stock exhausted, no winner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := engine.InitGameStateFromConfig(engine.DefaultConfig())
			state.Phase = engine.PhaseEnded
			state.Termination = tt.term
			state.Message = ""

			var buf bytes.Buffer
			got := Status(asciiOutput(&buf), state)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Status() = %q, want it to contain %q", got, tt.want)
			}
			if strings.Contains(got, "Turn:") {
				t.Errorf("Ended game should not show the turn line: %q", got)
			}
		})
	}
}
