package driven

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// InferenceClient sends one assembled request to a multimodal endpoint.
// Implementations make exactly one attempt per call; retries are the
// caller's concern.
//
// Errors should be classified so the caller can decide whether to retry:
//   - *domain.ConnectionError when no response was received
//   - *domain.StatusError for non-2xx responses
//
// Any other error is treated as non-retryable.
type InferenceClient interface {
	// Complete sends the payload and returns the reply text.
	Complete(ctx context.Context, apiKey string, payload *domain.RequestPayload) (string, error)

	// ModelName returns the model the client targets.
	ModelName() string

	// Ping validates the endpoint is reachable with the given key.
	Ping(ctx context.Context, apiKey string) error
}
