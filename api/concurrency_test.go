package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/wricardo/bloodflow/game/config"
	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
	"github.com/wricardo/bloodflow/game/session"
	"github.com/wricardo/bloodflow/transport/websocket"
)

// TestConcurrentMoveAndState hammers one session with select/deselect moves
// while other requests read its state. Run with -race: every response must be
// a consistent snapshot taken under the service lock.
func TestConcurrentMoveAndState(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)

	hub := websocket.NewHub()
	go hub.Run(t.Context())

	server := httptest.NewServer(NewServer(svc, hub))
	defer server.Close()

	info, err := svc.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	ruleset := info.GameConfig
	base := server.URL + "/api/sessions/" + info.ID

	const requests = 200
	body := []byte(`{"player":"A","row":0,"col":3}`)
	errs := make(chan string, 4*requests)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < requests; i++ {
			resp, err := http.Post(base+"/move", "application/json", bytes.NewReader(body))
			if err != nil {
				errs <- err.Error()
				return
			}
			var result service.ActionResult
			err = json.NewDecoder(resp.Body).Decode(&result)
			resp.Body.Close()
			if err != nil {
				errs <- "decode move: " + err.Error()
				continue
			}
			if result.GameState == nil {
				errs <- "move response without state"
				continue
			}
			if err := result.GameState.Validate(ruleset); err != nil {
				errs <- "move: " + err.Error()
			}
		}
	}()
	for reader := 0; reader < 2; reader++ {
		go func() {
			defer wg.Done()
			for i := 0; i < requests; i++ {
				resp, err := http.Get(base + "/state")
				if err != nil {
					errs <- err.Error()
					return
				}
				var state engine.GameState
				err = json.NewDecoder(resp.Body).Decode(&state)
				resp.Body.Close()
				if err != nil {
					errs <- "decode state: " + err.Error()
					continue
				}
				if err := state.Validate(ruleset); err != nil {
					errs <- "state: " + err.Error()
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}

	final, err := svc.GetGameState(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if final.TotalMoves != requests {
		t.Errorf("Expected %d recorded attempts, got %d", requests, final.TotalMoves)
	}
	if final.Turn != engine.PlayerA || final.TokenA != engine.StartCell(ruleset, engine.PlayerA) {
		t.Errorf("Select/deselect must not move the token or pass the turn, got %v with %s to play", final.TokenA, final.Turn)
	}
}

func TestServiceReturnsDetachedState(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	held, _ := svc.GetGameState(ctx, info.ID)
	if _, err := svc.Move(ctx, info.ID, engine.PlayerA, held.TokenA); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if held.Selection != nil || len(held.MoveHistory) != 0 {
		t.Error("A state handed out earlier changed after the next command")
	}

	held.Board[4][4].Wall = true
	now, _ := svc.GetGameState(ctx, info.ID)
	if now.Board[4][4].Wall {
		t.Error("Writing to a returned state reached the session")
	}
	if now.Selection == nil {
		t.Error("Expected the selection to be pending")
	}
}
