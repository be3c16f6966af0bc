package driving

import "github.com/custodia-labs/papersift/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults applied.
	Get() (*domain.AppSettings, error)

	// Set updates a single setting by its config key (e.g. search.or_soft_weight).
	// The value is parsed according to the key's type and validated.
	Set(key, value string) error

	// Keys lists the settable config keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
