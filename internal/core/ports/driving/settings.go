package driving

import "github.com/custodia-labs/pagelens/internal/core/domain"

// SettingsService manages pipeline settings.
type SettingsService interface {
	// Get retrieves current settings, filling unset keys with defaults.
	Get() (*domain.PipelineSettings, error)

	// Save validates and persists settings.
	Save(settings *domain.PipelineSettings) error

	// Set updates a single setting by key, parsing value for the key's type.
	Set(key, value string) error

	// Keys returns every recognised setting key in display order.
	Keys() []string

	// Entries returns the current value of every setting in display order.
	Entries() ([]domain.SettingEntry, error)

	// SetAPIKey stores the endpoint API key.
	SetAPIKey(apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.PipelineSettings
}
