package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/bloodflow/game/config"
	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/render"
)

const playHelp = `Commands (rows and columns start at 1):
  m ROW COL   select your token, then the cell to move it to
  w ROW COL   place a clot
  l           list where the selected token (or yours) can go
  r           reset the game
  h           show this help
  q           quit`

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a hot-seat game in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ruleset",
				Usage: "ruleset name from the config directory",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadRuleset(cmd.String("config-dir"), cmd.String("ruleset"))
			if err != nil {
				return err
			}
			eng, err := engine.NewEngine(cfg)
			if err != nil {
				return err
			}
			return runPlay(os.Stdin, termenv.NewOutput(os.Stdout), eng)
		},
	}
}

// loadRuleset returns the named ruleset, the directory default when name is
// empty, or the built-in ruleset when there is no config directory.
func loadRuleset(configDir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(configDir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		logger.Debug("no config directory, using built-in ruleset", "dir", configDir)
		return engine.DefaultConfig(), nil
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

// runPlay reads commands from in until EOF or quit, applying them for the
// player whose turn it is and redrawing the board after each one.
func runPlay(in io.Reader, out *termenv.Output, eng *engine.GameEngine) error {
	if err := render.Board(out, eng.GetState()); err != nil {
		return err
	}
	fmt.Fprintln(out, playHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s> ", eng.Turn())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		verb := strings.ToLower(fields[0])
		switch verb {
		case "q", "quit":
			return nil
		case "h", "help":
			fmt.Fprintln(out, playHelp)
			continue
		case "r", "reset":
			eng.Reset()
		case "l", "legal":
			printLegal(out, eng)
			continue
		case "m", "move", "w", "wall":
			cell, err := parseCell(fields[1:])
			if err != nil {
				fmt.Fprintln(out, out.String(err.Error()).Foreground(out.Color("1")).String())
				continue
			}
			var outcome engine.Outcome
			if verb == "m" || verb == "move" {
				outcome = eng.AttemptMove(eng.Turn(), cell)
			} else {
				outcome = eng.AttemptPlaceWall(eng.Turn(), cell)
			}
			if outcome.Result == engine.ResultRejected {
				fmt.Fprintln(out, out.String("rejected: "+string(outcome.Reason)).Foreground(out.Color("1")).Bold().String())
			}
		default:
			fmt.Fprintf(out, "unknown command %q, type h for help\n", fields[0])
			continue
		}

		if err := render.Board(out, eng.GetState()); err != nil {
			return err
		}
	}
}

// parseCell converts 1-based "ROW COL" arguments into a cell
func parseCell(args []string) (engine.Cell, error) {
	if len(args) != 2 {
		return engine.Cell{}, fmt.Errorf("expected ROW COL")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return engine.Cell{}, fmt.Errorf("invalid row %q", args[0])
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return engine.Cell{}, fmt.Errorf("invalid column %q", args[1])
	}
	return engine.Cell{Row: row - 1, Col: col - 1}, nil
}

func printLegal(out io.Writer, eng *engine.GameEngine) {
	from := eng.TokenPosition(eng.Turn())
	if sel := eng.Selection(); sel != nil {
		from = *sel
	}
	cells := eng.LegalDestinations(from)
	if len(cells) == 0 {
		fmt.Fprintf(out, "no legal destinations from %s\n", from)
		return
	}
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	fmt.Fprintf(out, "from %s: %s\n", from, strings.Join(parts, ", "))
}
