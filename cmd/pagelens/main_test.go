package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestWire(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ANTHROPIC_API_KEY", "")

	svc, err := wire(home)

	require.NoError(t, err)
	assert.NotNil(t, svc.Analysis)
	assert.NotNil(t, svc.Settings)
	assert.NotNil(t, svc.Checker)
	assert.Equal(t, filepath.Join(home, "prompts"), svc.Prompts.Dir())
}

func TestWire_StoredKeyIsUsedWithoutEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ANTHROPIC_API_KEY", "")

	svc, err := wire(home)
	require.NoError(t, err)
	require.NoError(t, svc.Settings.SetAPIKey("sk-ant-stored"))

	assert.Equal(t, "sk-ant-stored", svc.Keys.APIKey())
}

func TestWire_InvalidSettingsFallBackToDefaults(t *testing.T) {
	home := t.TempDir()
	config := "[tiling]\ntile_height = 100\noverlap = 500\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(config), 0600))

	svc, err := wire(home)

	require.NoError(t, err)
	assert.NotNil(t, svc.Analysis)
}

func TestErrorLine(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"auth", &domain.AuthError{Message: "no API key configured"}, "ANTHROPIC_API_KEY"},
		{"too large", fmt.Errorf("%w: page.png", domain.ErrTooLarge), "input.max_upload_bytes"},
		{"transport", &domain.TransportError{Attempts: 3, Err: errors.New("boom")}, "retry.max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := errorLine(tt.err)
			assert.Contains(t, line, "Error: ")
			assert.Contains(t, line, tt.hint)
		})
	}

	assert.Equal(t, "Error: plain", errorLine(errors.New("plain")))
}
