package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change tiling, retry and endpoint settings.

Settings are stored in ~/.pagelens/config.toml. The API key can also be
provided through the ANTHROPIC_API_KEY environment variable or a .env file,
which take precedence over the stored key.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. The new value is validated together with the rest of
the settings before it is saved.

Examples:
  pagelens settings set tiling.tile_height 3000
  pagelens settings set tiling.quality_ladder 90,75,60
  pagelens settings set retry.delay 5s`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the API key",
	Long:  `Prompt for the API key without echoing it and store it in the config file.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsKey,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Long:  `Restore every setting to its default. A stored API key is kept.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the API key against the endpoint",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not initialised")
	}

	entries, err := settingsService.Entries()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Settings"))
	section := ""
	for _, e := range entries {
		if prefix, _, _ := strings.Cut(e.Key, "."); prefix != section {
			section = prefix
			fmt.Fprintln(out)
			fmt.Fprintln(out, headingStyle.Render("["+section+"]"))
		}
		value := e.Value
		if value == "" {
			value = mutedStyle.Render("(not set)")
		}
		fmt.Fprintf(out, "  %-*s  %s\n", width, e.Key, value)
	}

	if keySource != nil && keySource.APIKey() != "" {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "API key in effect: %s\n", domain.MaskAPIKey(keySource.APIKey()))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not initialised")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", successStyle.Render("✓"), args[0], args[1])
	return nil
}

func runSettingsKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not initialised")
	}

	fmt.Fprint(cmd.OutOrStdout(), "API key: ")
	apiKey := readPassword(cmd)
	fmt.Fprintln(cmd.OutOrStdout())

	if err := settingsService.SetAPIKey(apiKey); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s API key saved (%s)\n", successStyle.Render("✓"), domain.MaskAPIKey(strings.TrimSpace(apiKey)))
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not initialised")
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Settings restored to defaults\n", successStyle.Render("✓"))
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if keyChecker == nil || keySource == nil {
		return errors.New("endpoint client not initialised")
	}

	apiKey := keySource.APIKey()
	if apiKey == "" {
		return &domain.AuthError{Message: "no API key configured"}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := keyChecker.Ping(ctx, apiKey); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s API key %s accepted\n", successStyle.Render("✓"), domain.MaskAPIKey(apiKey))
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(cmd *cobra.Command) string {
	// Try to read password without echo
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(cmd.InOrStdin())
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
