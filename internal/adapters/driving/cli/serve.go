package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragserve/internal/adapters/driving/api"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// shutdownGrace bounds how long in-flight requests may finish on shutdown.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

The language model loads in the background; /health reports 503 until it is
ready and chat requests are rejected in the meantime.

Examples:
  ragserve serve
  ragserve serve --port 9000 --host 0.0.0.0`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default from config, 8000)")
	serveCmd.Flags().String("host", "", "interface to bind (default from config, 127.0.0.1)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		settings.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		settings.Server.Host = host
	}

	engine, err := newEngine(settings)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			logger.Warn("Closing pipeline: %v", cerr)
		}
	}()

	ctx := cmd.Context()
	engine.Start(ctx)

	server := api.NewServer(
		api.ConfigFrom(settings.Server),
		engine.Chat(),
		api.WithMetricsHandler(engine.MetricsHandler()),
	)
	if err := server.Start(); err != nil {
		return err
	}
	cmd.Printf("Serving on %s\n", server.URL())

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case serveErr = <-server.Errors():
		logger.Error("Server failed: %v", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return errors.Join(serveErr, server.Stop(shutdownCtx))
}
