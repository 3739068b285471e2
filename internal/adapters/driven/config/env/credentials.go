// Package env resolves credentials from the process environment.
package env

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure CredentialSource implements the interface.
var _ driven.CredentialSource = (*CredentialSource)(nil)

// APIKeyVar is the environment variable holding the endpoint API key.
//
//nolint:gosec // G101: variable name, not a credential.
const APIKeyVar = "ANTHROPIC_API_KEY"

// CredentialSource reads the API key from the environment, falling back to
// a stored key.
type CredentialSource struct {
	fallback func() string
}

// NewCredentialSource loads the given .env files (".env" when none are
// named) into the environment and returns a source that prefers
// ANTHROPIC_API_KEY over fallback. Missing files are ignored and
// variables already set are never overridden.
func NewCredentialSource(fallback func() string, envFiles ...string) *CredentialSource {
	_ = godotenv.Load(envFiles...)
	return &CredentialSource{fallback: fallback}
}

// APIKey returns the key, or "" when neither source has one.
func (c *CredentialSource) APIKey() string {
	if key := strings.TrimSpace(os.Getenv(APIKeyVar)); key != "" {
		return key
	}
	if c.fallback == nil {
		return ""
	}
	return strings.TrimSpace(c.fallback())
}
