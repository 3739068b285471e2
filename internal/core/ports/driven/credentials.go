package driven

// CredentialSource resolves the API key used to call the inference endpoint.
type CredentialSource interface {
	// APIKey returns the configured key, or "" when none is available.
	APIKey() string
}
