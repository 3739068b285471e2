package main

import (
	"errors"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// errorLine renders err for the terminal with a hint for the common failures.
func errorLine(err error) string {
	line := "Error: " + err.Error()

	switch {
	case errors.Is(err, domain.ErrAuth):
		return line + "\nSet ANTHROPIC_API_KEY or run 'pagelens settings set-key'."
	case errors.Is(err, domain.ErrTooLarge):
		return line + "\nRaise the limit with 'pagelens settings set input.max_upload_bytes <bytes>'."
	case errors.Is(err, domain.ErrTransport):
		return line + "\nThe endpoint kept failing; try again later or raise retry.max_retries."
	default:
		return line
	}
}
