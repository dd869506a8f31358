// Command analyze prints a human-readable summary of the persisted sessions in
// a sessions directory: how each game stands or ended, how many moves, clots
// and rejections it took, and totals across all games.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/session"
)

// SessionStats summarizes one persisted session
type SessionStats struct {
	ID         string
	Ruleset    string
	Phase      engine.Phase
	Outcome    string
	Moves      int
	Walls      int
	Selections int
	Rejections map[engine.RejectionKind]int
	ClotsLeft  int
	Attempts   int

	// Rows each token still has to travel to the far row
	ToCrossA int
	ToCrossB int
}

// loadSessions decodes every session file in dir, skipping unreadable ones
func loadSessions(dir string) ([]*session.PersistedSessionData, []error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, []error{err}
	}
	sort.Strings(files)

	var sessions []*session.PersistedSessionData
	var errs []error
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		var persisted session.PersistedSessionData
		if err := json.Unmarshal(data, &persisted); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		if persisted.GameState == nil {
			errs = append(errs, fmt.Errorf("%s: no game state", filepath.Base(file)))
			continue
		}
		sessions = append(sessions, &persisted)
	}
	return sessions, errs
}

// analyzeSession counts the current game's attempts by outcome
func analyzeSession(data *session.PersistedSessionData) SessionStats {
	state := data.GameState
	stats := SessionStats{
		ID:         data.ID,
		Ruleset:    data.ConfigName,
		Phase:      state.Phase,
		Outcome:    outcome(state),
		Rejections: map[engine.RejectionKind]int{},
		ClotsLeft:  state.Stock,
		Attempts:   len(state.CurrentMoves),
		ToCrossA:   engine.RowsToCross(state, engine.PlayerA),
		ToCrossB:   engine.RowsToCross(state, engine.PlayerB),
	}

	for _, entry := range state.CurrentMoves {
		switch entry.Result {
		case engine.ResultSelected:
			stats.Selections++
		case engine.ResultRejected:
			stats.Rejections[entry.Reason]++
		case engine.ResultAccepted:
			if entry.Action == engine.ActionWall {
				stats.Walls++
			} else {
				stats.Moves++
			}
		}
	}
	return stats
}

func outcome(state *engine.GameState) string {
	t := state.Termination
	switch {
	case t == nil:
		return fmt.Sprintf("in progress, %s to play", state.Turn)
	case t.Winner == "":
		return "ended: clot stock exhausted"
	default:
		return fmt.Sprintf("ended: %s wins by %s", t.Winner, t.Reason)
	}
}

func printStats(stats SessionStats) {
	fmt.Printf("Ruleset: %s\n", stats.Ruleset)
	fmt.Printf("Status: %s\n", stats.Outcome)
	fmt.Printf("Moves: %d, clots placed: %d, clots left: %d\n", stats.Moves, stats.Walls, stats.ClotsLeft)
	fmt.Printf("Attempts: %d (%d selections)\n", stats.Attempts, stats.Selections)
	fmt.Printf("Rows to cross: A %d, B %d\n", stats.ToCrossA, stats.ToCrossB)

	if len(stats.Rejections) == 0 {
		fmt.Printf("✅ No rejected commands\n")
		return
	}
	kinds := make([]string, 0, len(stats.Rejections))
	for kind := range stats.Rejections {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	fmt.Printf("⚠️  Rejected commands:\n")
	for _, kind := range kinds {
		fmt.Printf("   %s: %d\n", kind, stats.Rejections[engine.RejectionKind(kind)])
	}
}

func main() {
	dir := "sessions"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	sessions, errs := loadSessions(dir)
	for _, err := range errs {
		fmt.Printf("Error: %v\n", err)
	}

	totals := map[string]int{}
	for _, data := range sessions {
		stats := analyzeSession(data)
		fmt.Printf("\n=== Session %s ===\n", stats.ID)
		printStats(stats)

		if stats.Phase == engine.PhaseEnded {
			totals[stats.Outcome]++
		} else {
			totals["in progress"]++
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	fmt.Printf("Sessions: %d\n", len(sessions))
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-36s %d\n", k, totals[k])
	}
}
