// Package cli implements the ragserve command line.
//
// Services are injected by main through the Set* functions before Execute
// runs, so commands depend only on driving ports.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driving"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// Engine is the assembled question-answering pipeline behind serve, ask
// and mcp serve.
type Engine interface {
	// Chat returns the chat service.
	Chat() driving.ChatService

	// MetricsHandler serves the Prometheus exposition. May be nil.
	MetricsHandler() http.Handler

	// Load blocks until the language model is ready.
	Load(ctx context.Context) error

	// Start loads the model and samples memory in the background until
	// ctx is cancelled.
	Start(ctx context.Context)

	// Close releases model clients and stops background work.
	Close() error
}

// EngineFactory builds an Engine from resolved settings.
type EngineFactory func(settings *domain.AppSettings) (Engine, error)

var (
	version = "dev"
	verbose bool

	settingsService driving.SettingsService
	engineFactory   EngineFactory
)

var rootCmd = &cobra.Command{
	Use:   "ragserve",
	Short: "Document question answering over HTTP",
	Long: `ragserve answers questions about uploaded documents.

Each user uploads a document which is chunked, embedded and indexed. Questions
are answered by a language model from the most relevant chunks.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Configure(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService injects the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetEngineFactory injects the pipeline constructor.
func SetEngineFactory(f EngineFactory) {
	engineFactory = f
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, typically cancelled on
// SIGINT or SIGTERM.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadSettings resolves the current settings.
func loadSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService.Get()
}

// newEngine builds the pipeline for settings.
func newEngine(settings *domain.AppSettings) (Engine, error) {
	if engineFactory == nil {
		return nil, errors.New("engine factory not configured")
	}
	return engineFactory(settings)
}
