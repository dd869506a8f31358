package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
)

func newTestStore(t *testing.T) (*FilePersistence, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFilePersistence(dir, newStubRulesets())
	if err != nil {
		t.Fatalf("NewFilePersistence() error = %v", err)
	}
	return store, dir
}

func sessionFor(id string, g *engine.GameEngine) *service.Session {
	created := time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)
	return &service.Session{
		ID:             id,
		Engine:         g,
		Config:         g.GetConfig(),
		CreatedAt:      created,
		LastAccessedAt: created.Add(time.Minute),
	}
}

// writeRecord stores a fresh game for id after letting edit tamper with it
func writeRecord(t *testing.T, dir, id string, edit func(*PersistedSessionData)) {
	t.Helper()
	record := PersistedSessionData{
		ID:         id,
		ConfigName: "test",
		CreatedAt:  time.Now(),
		GameState:  engine.InitGameStateFromConfig(testRuleset()),
	}
	if edit != nil {
		edit(&record)
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Failed to encode record: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write record: %v", err)
	}
}

func TestFilePersistence_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		play func(*testing.T) *engine.GameEngine
		next func(t *testing.T, g *engine.GameEngine)
	}{
		{
			name: "mid game with a pending selection",
			play: playMidGame,
			next: func(t *testing.T, g *engine.GameEngine) {
				if out := g.AttemptMove(engine.PlayerB, engine.Cell{Row: 8, Col: 2}); !out.Accepted {
					t.Errorf("Expected the restored selection to be confirmed, got %+v", out)
				}
				if g.Turn() != engine.PlayerA {
					t.Errorf("Expected A to play next, got %s", g.Turn())
				}
			},
		},
		{name: "crossing", play: playCrossing},
		{name: "blockade", play: playBlockade},
		{name: "stock exhausted", play: playStockOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			original := sessionFor("game1", tt.play(t))

			if err := store.Save(original); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			loaded, err := store.Load("game1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if !reflect.DeepEqual(loaded.Engine.GetState(), original.Engine.GetState()) {
				t.Errorf("Restored state differs:\n got %+v\nwant %+v", loaded.Engine.GetState(), original.Engine.GetState())
			}
			if loaded.Config.Name != "Test Config" {
				t.Errorf("Expected the test ruleset, got %q", loaded.Config.Name)
			}
			if !loaded.CreatedAt.Equal(original.CreatedAt) || !loaded.LastAccessedAt.Equal(original.LastAccessedAt) {
				t.Error("Session times were not restored")
			}

			if tt.next != nil {
				tt.next(t, loaded.Engine)
				return
			}
			out := loaded.Engine.AttemptPlaceWall(loaded.Engine.Turn(), engine.Cell{Row: 3, Col: 6})
			if out.Reason != engine.GameAlreadyEnded {
				t.Errorf("Expected an ended game to stay ended, got %+v", out)
			}
		})
	}
}

func TestFilePersistence_SaveIsSnapshot(t *testing.T) {
	store, dir := newTestStore(t)
	sess := sessionFor("snap", playMidGame(t))
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "snap.json"))
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}
	var record PersistedSessionData
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Session file is not JSON: %v", err)
	}
	if record.ConfigName != "test" {
		t.Errorf("Expected the ruleset id 'test', got %q", record.ConfigName)
	}
	if record.GameState.Selection == nil || *record.GameState.Selection != (engine.Cell{Row: 8, Col: 3}) {
		t.Errorf("Expected B's pending selection in the file, got %v", record.GameState.Selection)
	}
	if engine.CountWalls(record.GameState.Board) != 2 || record.GameState.Stock != 8 {
		t.Errorf("Expected 2 clots and 8 left, got %d and %d", engine.CountWalls(record.GameState.Board), record.GameState.Stock)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only snap.json after a save, found %d entries", len(entries))
	}
}

func TestFilePersistence_LoadRejectsCorruptFiles(t *testing.T) {
	tests := []struct {
		name string
		edit func(*PersistedSessionData)
	}{
		{"no game state", func(r *PersistedSessionData) { r.GameState = nil }},
		{"id of another session", func(r *PersistedSessionData) { r.ID = "other" }},
		{"token on a clot", func(r *PersistedSessionData) {
			r.GameState.Board[0][3].Wall = true
			r.GameState.Stock--
		}},
		{"selection away from the mover", func(r *PersistedSessionData) {
			r.GameState.Selection = &engine.Cell{Row: 5, Col: 5}
		}},
		{"selection on the opponent", func(r *PersistedSessionData) {
			sel := r.GameState.TokenB
			r.GameState.Selection = &sel
		}},
		{"more clots than spent", func(r *PersistedSessionData) { r.GameState.Board[4][4].Wall = true }},
		{"ended without a reason", func(r *PersistedSessionData) { r.GameState.Phase = engine.PhaseEnded }},
		{"winner who never crossed", func(r *PersistedSessionData) {
			r.GameState.Phase = engine.PhaseEnded
			r.GameState.Termination = &engine.Termination{Reason: engine.Crossing, Winner: engine.PlayerB}
		}},
		{"stock out with clots left", func(r *PersistedSessionData) {
			r.GameState.Phase = engine.PhaseEnded
			r.GameState.Termination = &engine.Termination{Reason: engine.StockExhausted}
		}},
		{"board of another ruleset", func(r *PersistedSessionData) {
			r.GameState = engine.InitGameStateFromConfig(&engine.GameConfig{Name: "x", Description: "x", Rows: 5, Cols: 5, WallStock: 3})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestStore(t)
			writeRecord(t, dir, "bad", tt.edit)

			_, err := store.Load("bad")
			if !errors.Is(err, ErrCorruptSession) {
				t.Errorf("Load() error = %v, want ErrCorruptSession", err)
			}
		})
	}
}

func TestFilePersistence_LoadErrors(t *testing.T) {
	store, dir := newTestStore(t)

	if _, err := store.Load("nobody"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	os.WriteFile(filepath.Join(dir, "garbled.json"), []byte(`{"id": "garbled", "game_state": {`), 0644)
	if _, err := store.Load("garbled"); !errors.Is(err, ErrCorruptSession) {
		t.Errorf("Expected ErrCorruptSession for truncated JSON, got %v", err)
	}

	writeRecord(t, dir, "retired", func(r *PersistedSessionData) { r.ConfigName = "retired-rules" })
	_, err := store.Load("retired")
	if !errors.Is(err, service.ErrConfigNotFound) || errors.Is(err, ErrCorruptSession) {
		t.Errorf("Expected a missing ruleset error, got %v", err)
	}

	// Ids are matched without regard to case inside the file
	writeRecord(t, dir, "MiXed", func(r *PersistedSessionData) { r.ID = "mixed" })
	if _, err := store.Load("MiXed"); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestFilePersistence_ListExistsDelete(t *testing.T) {
	store, dir := newTestStore(t)
	for _, id := range []string{"b2", "a1"} {
		if err := store.Save(sessionFor(id, newGame(t))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	os.WriteFile(filepath.Join(dir, tempPrefix+"c3-123"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "archive.json"), 0755)

	ids, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"a1", "b2"}) {
		t.Errorf("ListAll() = %v, want [a1 b2]", ids)
	}

	if !store.Exists("a1") || store.Exists("c3") {
		t.Error("Exists() disagrees with the directory")
	}
	if err := store.Delete("a1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Exists("a1") {
		t.Error("Session file still exists after Delete")
	}
	if err := store.Delete("a1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestFilePersistence_SaveWithoutGame(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Save(nil); err == nil {
		t.Error("Expected an error for a nil session")
	}
	if err := store.Save(&service.Session{ID: "empty"}); err == nil {
		t.Error("Expected an error for a session without an engine")
	}
}
