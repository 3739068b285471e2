package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptsPath(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "prompts", "path")

	require.NoError(t, err)
	assert.Equal(t, "/home/test/.pagelens/prompts\n", out)
}

func TestPromptsShow(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"default is the system prompt", []string{"prompts", "show"}, "system prompt text\n"},
		{"named prompt", []string{"prompts", "show", "analysis_user"}, "user prompt text\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServices(t)

			out, err := executeCommand(t, tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestPromptsShow_Unknown(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "prompts", "show", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
