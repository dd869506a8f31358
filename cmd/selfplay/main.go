// Command selfplay pits two bots against each other through the REST API of
// a running server and reports how the games ended.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
	"github.com/wricardo/bloodflow/render"
)

var logger = log15.New("module", "selfplay")

// Client talks to the game REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateSession starts a session on the given ruleset, the server default when empty
func (c *Client) CreateSession(ctx context.Context, ruleset string) (*service.SessionInfo, error) {
	var body interface{}
	if ruleset != "" {
		body = map[string]string{"config_id": ruleset}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// Play sends a scripted sequence of actions
func (c *Client) Play(ctx context.Context, sessionID string, actions []service.Action) (*service.PlayResult, error) {
	body := map[string]interface{}{"actions": actions}

	var result service.PlayResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/play", body, &result); err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	return &result, nil
}

// DeleteSession removes a finished session
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s - %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// GameSummary describes one finished (or abandoned) game
type GameSummary struct {
	SessionID   string
	Turns       int
	WallsUsed   int
	Termination *engine.Termination
	State       *engine.GameState
}

// playGame runs one bot game to its end or until maxTurns turns were played
func playGame(ctx context.Context, client *Client, strategy RaceStrategy, ruleset string, maxTurns int) (*GameSummary, error) {
	session, err := client.CreateSession(ctx, ruleset)
	if err != nil {
		return nil, err
	}

	state := session.GameState
	summary := &GameSummary{SessionID: session.ID, State: state}

	for summary.Turns < maxTurns && !state.IsOver() {
		actions := strategy.NextActions(state)
		if len(actions) == 0 {
			logger.Warn("no action available", "session", session.ID, "player", state.Turn)
			break
		}

		result, err := client.Play(ctx, session.ID, actions)
		if err != nil {
			return summary, err
		}
		if !result.Success {
			return summary, fmt.Errorf("turn %d rejected: %s", summary.Turns+1, result.StoppedReason)
		}

		state = result.GameState
		summary.Turns++
		logger.Debug("turn", "session", session.ID, "n", summary.Turns, "player", actions[0].Player, "action", actions[0].Type, "stock", state.Stock)
	}

	summary.State = state
	summary.WallsUsed = state.InitialStock - state.Stock
	summary.Termination = state.Termination
	return summary, nil
}

func describe(t *engine.Termination) string {
	if t == nil {
		return "unfinished"
	}
	if t.Winner == "" {
		return string(t.Reason)
	}
	return fmt.Sprintf("%s by %s", t.Winner, t.Reason)
}

func main() {
	cmd := &cli.Command{
		Name:  "selfplay",
		Usage: "play bot games against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Sources: cli.EnvVars("BLOODFLOW_API_URL")},
			&cli.StringFlag{Name: "ruleset", Usage: "ruleset id, server default when empty"},
			&cli.IntFlag{Name: "games", Value: 1},
			&cli.IntFlag{Name: "max-turns", Value: 500},
			&cli.BoolFlag{Name: "keep-last", Usage: "never place the final clot", Value: true},
			&cli.BoolFlag{Name: "board", Usage: "print the final board of each game"},
			&cli.BoolFlag{Name: "cleanup", Usage: "delete sessions after each game"},
			&cli.BoolFlag{Name: "debug"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	lvl := log15.LvlInfo
	if cmd.Bool("debug") {
		lvl = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))

	client := NewClient(cmd.String("api-url"))
	strategy := RaceStrategy{KeepLast: cmd.Bool("keep-last")}
	out := termenv.NewOutput(os.Stdout)

	outcomes := map[string]int{}
	games := int(cmd.Int("games"))
	for i := 0; i < games; i++ {
		summary, err := playGame(ctx, client, strategy, cmd.String("ruleset"), int(cmd.Int("max-turns")))
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}

		result := describe(summary.Termination)
		outcomes[result]++
		fmt.Printf("game %d (%s): %s after %d turns, %d clots used\n", i+1, summary.SessionID, result, summary.Turns, summary.WallsUsed)

		if cmd.Bool("board") {
			if err := render.Board(out, summary.State); err != nil {
				return err
			}
		}
		if cmd.Bool("cleanup") {
			if err := client.DeleteSession(ctx, summary.SessionID); err != nil {
				logger.Warn("failed to delete session", "session", summary.SessionID, "err", err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	for result, n := range outcomes {
		fmt.Printf("%-24s %d\n", result, n)
	}
	return nil
}
