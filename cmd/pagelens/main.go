// Command pagelens analyses landing page screenshots with a multimodal model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/config/env"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagelens/internal/core/services"
	"github.com/custodia-labs/pagelens/internal/logger"
	"github.com/custodia-labs/pagelens/internal/parsers/jsonreply"
	"github.com/custodia-labs/pagelens/internal/preprocessors/tiler"
)

// version is set at build time via -ldflags.
var version = "dev"

// homeEnv overrides the directory holding config.toml and prompts/.
const homeEnv = "PAGELENS_HOME"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	svc, err := wire(os.Getenv(homeEnv))
	if err != nil {
		return err
	}
	cli.SetServices(svc)
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}

// wire builds the services from the stored settings. An empty home uses
// ~/.pagelens.
func wire(home string) (cli.Services, error) {
	promptDir := ""
	if home != "" {
		promptDir = filepath.Join(home, "prompts")
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return cli.Services{}, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return cli.Services{}, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		// Keep the CLI usable so the settings can be fixed.
		logger.Warn("settings in %s are invalid, using defaults: %v", configStore.Path(), err)
		defaults := settingsService.GetDefaults()
		defaults.LLM.APIKey = settings.LLM.APIKey
		settings = &defaults
	}

	promptStore, err := file.NewPromptStore(promptDir)
	if err != nil {
		return cli.Services{}, fmt.Errorf("open prompts: %w", err)
	}

	credentials := env.NewCredentialSource(func() string {
		current, err := settingsService.Get()
		if err != nil {
			return ""
		}
		return current.LLM.APIKey
	})

	imageTiler, err := tiler.NewFromSettings(settings.Tiling)
	if err != nil {
		return cli.Services{}, fmt.Errorf("create tiler: %w", err)
	}

	client, err := anthropic.NewClientFromSettings(settings.LLM)
	if err != nil {
		return cli.Services{}, fmt.Errorf("create client: %w", err)
	}

	analysis := services.NewAnalysisService(imageTiler, client, jsonreply.New(), credentials, settings.Retry)
	analysis.SetPromptStore(promptStore)

	return cli.Services{
		Analysis: analysis,
		Settings: settingsService,
		Prompts:  promptStore,
		Checker:  client,
		Keys:     credentials,
	}, nil
}
