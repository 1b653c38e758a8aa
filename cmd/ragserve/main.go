// Command ragserve serves question answering over uploaded documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragserve/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragserve/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragserve/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/ragserve/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/core/services"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()
	logger.Configure(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	settingsService := services.NewSettingsService(openConfigStore(configDir()))

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetEngineFactory(newEngine)
	cli.SetConfigValidator(ai.Validator{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Sync()
		os.Exit(1)
	}
}

// configDir is where config.toml lives: the project root.
func configDir() string {
	if root := os.Getenv(services.EnvProjectRoot); root != "" {
		return root
	}
	return "."
}

// openConfigStore opens the TOML store in dir. An unreadable file is
// reported and replaced by an empty in-memory store so the service can
// still start from defaults and the environment.
func openConfigStore(dir string) driven.ConfigStore {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		logger.Warn("Ignoring config file: %v", err)
		return memory.NewConfigStore(nil)
	}
	return store
}
