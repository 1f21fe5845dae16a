package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/codepad/internal/config"
	"github.com/rpggio/codepad/internal/domain/assistant"
	"github.com/rpggio/codepad/internal/mcp"
	"github.com/rpggio/codepad/internal/transport"
	"github.com/rpggio/codepad/internal/tui"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "codepad",
		Short:         "Project/file workspace with an editor and a canned code assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       mcp.Version,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides CODEPAD_CONFIG_PATH)")

	root.AddCommand(newServeCmd(), newTUICmd(), newAskCmd(), newDumpCmd())
	return root
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("CODEPAD_CONFIG_PATH", configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	var mode, host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command table over MCP (stdio) or HTTP (JSON-RPC + MCP)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Transport.Mode = mode
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// stdout carries JSON-RPC in stdio mode.
			console := io.Writer(os.Stdout)
			if cfg.Transport.Mode == config.TransportStdio {
				console = os.Stderr
			}
			logger, closeLog, err := newLogger(cfg.Log.Level, cfg.Log.Path, console)
			if err != nil {
				return fmt.Errorf("log file error: %w", err)
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger, nil)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}
			defer a.Close()

			mcpServer := mcp.NewServer(mcp.Config{Handler: a.handler, Logger: logger})
			if cfg.Transport.Mode == config.TransportStdio {
				return runStdioMode(ctx, logger, mcpServer)
			}
			return runHTTPMode(ctx, logger, a.handler, mcpServer, cfg.Server.Host, cfg.Server.Port)
		},
	}
	cmd.Flags().StringVar(&mode, "transport", config.TransportStdio, "transport mode: stdio or http")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP listen host")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP listen port")
	return cmd
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler *mcp.Handler, mcpServer *sdkmcp.Server, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
	router := transport.NewServer(handler, transport.Options{Logger: logger, MCP: mcpHandler})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	return waitForShutdown(logger, httpServer)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the workspace in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// The screen belongs to the program; logs go to the file only.
			logger, closeLog, err := newLogger(cfg.Log.Level, cfg.Log.Path, nil)
			if err != nil {
				return fmt.Errorf("log file error: %w", err)
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			notifier := &tui.Notifier{}
			a, err := newApp(ctx, cfg, logger, notifier.AssistantMessage)
			if err != nil {
				return err
			}
			defer a.Close()
			unsubscribe := a.workspace.Subscribe(notifier.WorkspaceEvent)
			defer unsubscribe()

			return tui.Run(ctx, a.handler, notifier, tui.Options{Logger: logger})
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Print the assistant's reply to a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return assistant.ErrEmptyQuery
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), assistant.Respond(query))
			return err
		},
	}
}

func newDumpCmd() *cobra.Command {
	var withActivity bool
	var limit int

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the restored workspace state as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg.Log.Level, cfg.Log.Path, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("log file error: %w", err)
			}
			defer closeLog()

			a, err := newApp(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return dump(cmd.Context(), cmd.OutOrStdout(), a.handler, withActivity, limit)
		},
	}
	cmd.Flags().BoolVar(&withActivity, "activity", false, "include the recent activity journal")
	cmd.Flags().IntVar(&limit, "limit", 20, "activity entries to include")
	return cmd
}

func dump(ctx context.Context, w io.Writer, handler *mcp.Handler, withActivity bool, limit int) error {
	state, err := handler.Run(ctx, "get_state", nil)
	if err != nil {
		return err
	}
	out := map[string]any{"state": state}
	if withActivity {
		entries, err := handler.Run(ctx, "get_recent_activity", mcp.GetRecentActivityParams{Limit: limit})
		if err != nil {
			return err
		}
		out["activity"] = entries
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
