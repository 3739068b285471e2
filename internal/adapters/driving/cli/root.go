// Package cli provides the pagelens command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// version is set at build time via -ldflags or by SetVersion.
var version = "dev"

// Services used by the commands. Set by SetServices before Execute.
var (
	analysisService driving.AnalysisService
	settingsService driving.SettingsService
	promptSource    PromptSource
	keyChecker      KeyChecker
	keySource       KeySource
)

// PromptSource exposes the customisable prompt files.
type PromptSource interface {
	// Dir returns the directory holding the prompt files.
	Dir() string

	// Load returns the prompt currently in effect.
	Load(name string) (string, error)
}

// PromptWatcher is a PromptSource that can follow edits to its files.
type PromptWatcher interface {
	PromptSource

	// Watch evicts cached prompts as their files change until ctx is done.
	Watch(ctx context.Context) error
}

// KeyChecker verifies an API key against the endpoint.
type KeyChecker interface {
	Ping(ctx context.Context, apiKey string) error
}

// KeySource resolves the API key in effect.
type KeySource interface {
	APIKey() string
}

// Services bundles everything the commands run against.
type Services struct {
	Analysis driving.AnalysisService
	Settings driving.SettingsService
	Prompts  PromptSource
	Checker  KeyChecker
	Keys     KeySource
}

var rootCmd = &cobra.Command{
	Use:   "pagelens",
	Short: "Analyse landing page screenshots with a multimodal model",
	Long: `pagelens slices long landing page screenshots into tiles the model can read,
sends them in page order with an analysis prompt, and turns the reply into a
structured critique of the page: sections, persuasion, scores and suggestions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print debug logs to stderr")
}

// SetServices injects the services the commands use.
func SetServices(s Services) {
	analysisService = s.Analysis
	settingsService = s.Settings
	promptSource = s.Prompts
	keyChecker = s.Checker
	keySource = s.Keys
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
