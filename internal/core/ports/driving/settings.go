package driving

import "github.com/custodia-labs/ragserve/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves settings from defaults, the config file and the environment.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single configuration key to the config file.
	Set(key, value string) error

	// Keys returns every key Set accepts.
	Keys() []string
}
