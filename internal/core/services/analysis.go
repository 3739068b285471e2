package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// AnalysisService assembles tiles into one request, calls the endpoint with
// bounded retry and extracts the structured result.
// It holds no per-call state; concurrent Analyze calls are independent.
type AnalysisService struct {
	tiler       driven.ImageTiler
	client      driven.InferenceClient
	extractor   driven.ReplyExtractor
	credentials driven.CredentialSource
	promptStore driven.PromptStore
	retry       domain.RetrySettings
	sleep       SleepFunc
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	tiler driven.ImageTiler,
	client driven.InferenceClient,
	extractor driven.ReplyExtractor,
	credentials driven.CredentialSource,
	retry domain.RetrySettings,
) *AnalysisService {
	return &AnalysisService{
		tiler:       tiler,
		client:      client,
		extractor:   extractor,
		credentials: credentials,
		retry:       retry,
		sleep:       sleepContext,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the built-in prompts are used.
func (s *AnalysisService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetSleeper replaces the wait between retries.
func (s *AnalysisService) SetSleeper(fn SleepFunc) {
	if fn != nil {
		s.sleep = fn
	}
}

// Analyze runs the pipeline over images in order. Each image's bytes are
// released as soon as it has been tiled.
func (s *AnalysisService) Analyze(ctx context.Context, images []domain.SourceImage) (*domain.Analysis, error) {
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}

	// Fail before any tiling work when there is nothing to authenticate with.
	apiKey := ""
	if s.credentials != nil {
		apiKey = s.credentials.APIKey()
	}
	if apiKey == "" {
		return nil, &domain.AuthError{Message: "no API key configured"}
	}

	start := time.Now()
	id := uuid.New().String()
	logger.Section("Analysis " + id)

	payload, err := s.assemble(ctx, images)
	if err != nil {
		return nil, err
	}
	tileCount := payload.ImageBlockCount()
	logger.Info("assembled %d image block(s) from %d image(s), %d base64 bytes for %s",
		tileCount, len(images), payload.EncodedSize(), s.client.ModelName())

	reply, attempts, err := s.call(ctx, apiKey, payload)
	payload.Release()
	if err != nil {
		return nil, fmt.Errorf("call endpoint: %w", err)
	}

	result, err := s.extractor.Extract(reply)
	if err != nil {
		return nil, fmt.Errorf("extract reply: %w", err)
	}

	analysis := &domain.Analysis{
		ID:         id,
		Result:     result,
		Summary:    result.Summarize(),
		ImageCount: len(images),
		TileCount:  tileCount,
		Attempts:   attempts,
		Duration:   time.Since(start),
	}
	logger.Info("analysis %s done in %s after %d attempt(s)", id, analysis.Duration, attempts)
	return analysis, nil
}

// assemble tiles every image in order and appends the trailing instruction.
func (s *AnalysisService) assemble(ctx context.Context, images []domain.SourceImage) (*domain.RequestPayload, error) {
	payload := &domain.RequestPayload{
		System: s.loadPrompt(driven.PromptAnalysisSystem, domain.DefaultSystemPrompt),
	}

	for i := range images {
		img := &images[i]
		tiles, err := s.tiler.Prepare(ctx, *img)
		img.Release()
		if err != nil {
			for j := i + 1; j < len(images); j++ {
				images[j].Release()
			}
			return nil, fmt.Errorf("prepare image %d (%s): %w", i+1, img.Name, err)
		}
		for _, tile := range tiles {
			payload.Blocks = append(payload.Blocks, domain.NewImageBlock(tile))
		}
	}

	payload.Blocks = append(payload.Blocks,
		domain.NewTextBlock(s.loadPrompt(driven.PromptAnalysisUser, domain.DefaultUserPrompt)))
	return payload, nil
}

// call sends the payload, retrying connection failures and server faults
// up to retry.MaxRetries times. It returns the number of attempts made.
func (s *AnalysisService) call(ctx context.Context, apiKey string, payload *domain.RequestPayload) (string, int, error) {
	maxAttempts := 1 + s.retry.MaxRetries

	for attempt := 1; ; attempt++ {
		reply, err := s.client.Complete(ctx, apiKey, payload)
		if err == nil {
			return reply, attempt, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", attempt, ctxErr
		}

		retryable, classified := classify(err)
		if !retryable {
			return "", attempt, classified
		}
		if attempt == maxAttempts {
			return "", attempt, &domain.TransportError{Attempts: attempt, Err: err}
		}

		delay := s.retry.DelayFor(attempt)
		logger.Warn("endpoint call failed: %v; retrying in %s (%d/%d)", err, delay, attempt, s.retry.MaxRetries)
		if err := s.sleep(ctx, delay); err != nil {
			return "", attempt, err
		}
	}
}

// classify reports whether err is worth retrying and maps permanent
// failures onto their domain error.
func classify(err error) (bool, error) {
	var connErr *domain.ConnectionError
	if errors.As(err, &connErr) {
		return true, err
	}

	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.ServerFault():
			return true, err
		case statusErr.Unauthorized():
			return false, &domain.AuthError{StatusCode: statusErr.StatusCode, Message: statusErr.Message}
		}
	}

	return false, &domain.NonRetryableCallError{Err: err}
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AnalysisService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
