package domain

import (
	"fmt"
	"math"
	"time"
)

// TilingSettings controls how source images are downscaled, split and encoded.
type TilingSettings struct {
	// MaxTileBytes is the byte budget for one encoded tile.
	MaxTileBytes int

	// MaxDimension is the tallest image sent as a single tile.
	MaxDimension int

	// TileHeight is the height of the sliding window used on taller images.
	TileHeight int

	// Overlap is the number of rows shared by consecutive tiles.
	Overlap int

	// TargetWidth is the width wider images are downscaled to.
	TargetWidth int

	// QualityLadder lists JPEG qualities to try, highest first.
	QualityLadder []int

	// ShrinkRatio is the per-step scale applied once the ladder is exhausted.
	ShrinkRatio float64

	// ShrinkQuality is the JPEG quality used while shrinking.
	ShrinkQuality int
}

// Validate checks the tiling settings are internally consistent.
func (t TilingSettings) Validate() error {
	switch {
	case t.MaxTileBytes <= 0:
		return fmt.Errorf("%w: max tile bytes must be positive", ErrInvalidSettings)
	case t.MaxDimension <= 0:
		return fmt.Errorf("%w: max dimension must be positive", ErrInvalidSettings)
	case t.TileHeight <= 0:
		return fmt.Errorf("%w: tile height must be positive", ErrInvalidSettings)
	case t.TileHeight > t.MaxDimension:
		return fmt.Errorf("%w: tile height must not exceed max dimension", ErrInvalidSettings)
	case t.Overlap < 0 || t.Overlap >= t.TileHeight:
		return fmt.Errorf("%w: overlap must be in [0, tile height)", ErrInvalidSettings)
	case t.TargetWidth <= 0:
		return fmt.Errorf("%w: target width must be positive", ErrInvalidSettings)
	case t.TargetWidth > t.MaxDimension:
		return fmt.Errorf("%w: target width must not exceed max dimension", ErrInvalidSettings)
	case len(t.QualityLadder) == 0:
		return fmt.Errorf("%w: quality ladder is empty", ErrInvalidSettings)
	case t.ShrinkRatio <= 0 || t.ShrinkRatio >= 1:
		return fmt.Errorf("%w: shrink ratio must be in (0, 1)", ErrInvalidSettings)
	case !validQuality(t.ShrinkQuality):
		return fmt.Errorf("%w: shrink quality must be in [1, 100]", ErrInvalidSettings)
	}
	for _, q := range t.QualityLadder {
		if !validQuality(q) {
			return fmt.Errorf("%w: ladder quality %d out of [1, 100]", ErrInvalidSettings, q)
		}
	}
	return nil
}

func validQuality(q int) bool {
	return q >= 1 && q <= 100
}

// RetrySettings controls how transient endpoint failures are retried.
type RetrySettings struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Delay is the wait before the first retry.
	Delay time.Duration

	// BackoffMultiplier scales the delay for each further retry.
	// 1 keeps the delay constant.
	BackoffMultiplier float64
}

// DelayFor returns the wait before the given retry (1-based).
// The result saturates at the largest representable duration.
func (r RetrySettings) DelayFor(retry int) time.Duration {
	d := float64(r.Delay)
	for i := 1; i < retry; i++ {
		d *= r.BackoffMultiplier
		if d >= math.MaxInt64 {
			return time.Duration(math.MaxInt64)
		}
	}
	return time.Duration(d)
}

// Validate checks the retry settings.
func (r RetrySettings) Validate() error {
	switch {
	case r.MaxRetries < 0:
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidSettings)
	case r.Delay < 0:
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalidSettings)
	case r.BackoffMultiplier < 1:
		return fmt.Errorf("%w: backoff multiplier must be at least 1", ErrInvalidSettings)
	}
	return nil
}

// LLMSettings holds inference endpoint configuration.
type LLMSettings struct {
	// Model is the model identifier.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is a stored key. The environment takes precedence.
	APIKey string

	// MaxTokens bounds the reply length.
	MaxTokens int

	// Timeout bounds one request.
	Timeout time.Duration

	// RequestsPerSecond paces calls. Zero disables pacing.
	RequestsPerSecond float64
}

// InputSettings bounds what a caller may submit in one analysis.
type InputSettings struct {
	// MaxUploadBytes is the total encoded size accepted per analysis.
	MaxUploadBytes int64
}

// PipelineSettings holds all pipeline settings.
type PipelineSettings struct {
	Tiling TilingSettings
	Retry  RetrySettings
	LLM    LLMSettings
	Input  InputSettings
}

// Validate checks every section.
func (s PipelineSettings) Validate() error {
	if err := s.Tiling.Validate(); err != nil {
		return err
	}
	if err := s.Retry.Validate(); err != nil {
		return err
	}
	if s.LLM.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", ErrInvalidSettings)
	}
	if s.Input.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max upload bytes must be positive", ErrInvalidSettings)
	}
	return nil
}

// DefaultTilingSettings returns the tiling defaults.
// They keep every tile well under the endpoint's 5 MB image limit after
// base64 expansion, and below its 8000 px dimension limit.
func DefaultTilingSettings() TilingSettings {
	return TilingSettings{
		MaxTileBytes:  800_000,
		MaxDimension:  7900,
		TileHeight:    4000,
		Overlap:       200,
		TargetWidth:   1100,
		QualityLadder: []int{90, 80, 70, 55},
		ShrinkRatio:   0.75,
		ShrinkQuality: 60,
	}
}

// DefaultPipelineSettings returns settings with sensible defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		Tiling: DefaultTilingSettings(),
		Retry: RetrySettings{
			MaxRetries:        2,
			Delay:             3 * time.Second,
			BackoffMultiplier: 1,
		},
		LLM: LLMSettings{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 32000,
			Timeout:   5 * time.Minute,
		},
		Input: InputSettings{
			MaxUploadBytes: 30 << 20,
		},
	}
}

// SettingEntry is one setting rendered for display.
type SettingEntry struct {
	Key   string
	Value string
}

// MaskAPIKey hides all but the ends of a key for display.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
