package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/bloodflow/api"
	"github.com/wricardo/bloodflow/transport/mcp"
	"github.com/wricardo/bloodflow/transport/websocket"
)

const probeAttempts = 3

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server, starting an internal API when none is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "API server to proxy to",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("BLOODFLOW_API_URL"),
			},
			sessionsDirFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStdioMCP(ctx, cmd.String("api-url"), cmd.String("config-dir"), cmd.String("sessions-dir"))
		},
	}
}

// runStdioMCP serves MCP over stdio. It proxies to apiURL when that server
// answers its health check, otherwise to an internal API on a loopback port.
func runStdioMCP(ctx context.Context, apiURL, configDir, sessionsDir string) error {
	baseURL := strings.TrimRight(apiURL, "/")

	if probeAPI(ctx, baseURL, probeAttempts) {
		logger.Info("using external API server", "url", baseURL)
	} else {
		logger.Info("no external API server found, starting internal one", "url", baseURL)

		svc, err := initializeServices(configDir, sessionsDir)
		if err != nil {
			return err
		}
		defer svc.shutdown()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hubCtx, stopHub := context.WithCancel(ctx)
		defer stopHub()
		hub := websocket.NewHub()
		go hub.Run(hubCtx)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error("internal HTTP server error", "err", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("internal HTTP server started", "url", baseURL)
	}

	client := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// probeAPI reports whether baseURL answers GET /api/health, retrying with
// exponential backoff.
func probeAPI(ctx context.Context, baseURL string, attempts int) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    time.Second,
		Factor: 2,
	}

	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
		if err != nil {
			return false
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		logger.Debug("API probe failed", "url", baseURL, "attempt", i+1, "err", err)

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(b.Duration()):
		}
	}
	return false
}
