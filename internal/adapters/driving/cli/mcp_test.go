package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/mcp"
)

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "port flag should exist")
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_Long(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "analyze_screenshots")
	assert.Contains(t, mcpServeCmd.Long, "pagelens://analyses")
}

func TestMCPServeCmd_RequiresAnalysisService(t *testing.T) {
	setupTestServices(t)
	analysisService = nil

	_, err := executeCommand(t, "mcp", "serve")

	assert.ErrorIs(t, err, mcp.ErrMissingAnalysisService)
}
