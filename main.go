// Command bloodflow runs the Blood Flow game server and its clients.
//
// Commands:
//   - serve: HTTP server with the REST API, WebSocket hub and an /mcp endpoint
//   - mcp: MCP stdio server backed by an external API or an internal one
//   - play: hot-seat game in the terminal
//   - version: print the version
//
// Flags can also be set from the environment or a .env file in the working
// directory.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Blood Flow Game Server"
)

var logger = log15.New("module", "main")

func main() {
	setupLogging(false)

	// A missing .env file is not an error
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("error loading .env file", "err", err)
		}
	} else {
		logger.Debug("loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Crit("command failed", "err", err)
		os.Exit(1)
	}
}

// setupLogging installs the root log15 handler. Logs always go to stderr so
// the stdio MCP transport keeps stdout to itself.
func setupLogging(debug bool) {
	lvl := log15.LvlInfo
	if debug {
		lvl = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:  "bloodflow",
		Usage: "two-player blood vessel crossing game",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory containing rulesets",
				Value:   "configs",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}
