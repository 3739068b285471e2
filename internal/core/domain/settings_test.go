package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineSettings(t *testing.T) {
	s := DefaultPipelineSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 800_000, s.Tiling.MaxTileBytes)
	assert.Equal(t, 7900, s.Tiling.MaxDimension)
	assert.Equal(t, 4000, s.Tiling.TileHeight)
	assert.Equal(t, 200, s.Tiling.Overlap)
	assert.Equal(t, 1100, s.Tiling.TargetWidth)
	assert.Equal(t, []int{90, 80, 70, 55}, s.Tiling.QualityLadder)
	assert.Equal(t, 2, s.Retry.MaxRetries)
	assert.Equal(t, 3*time.Second, s.Retry.Delay)
	assert.Equal(t, 1.0, s.Retry.BackoffMultiplier)
	assert.Equal(t, int64(30<<20), s.Input.MaxUploadBytes)
}

func TestDefaultTilingSettings_IsIndependentCopy(t *testing.T) {
	a := DefaultTilingSettings()
	a.QualityLadder[0] = 10

	b := DefaultTilingSettings()
	assert.Equal(t, 90, b.QualityLadder[0])
}

// TestTilingSettings_Validate tests each invalid field is rejected
func TestTilingSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TilingSettings)
	}{
		{"zero budget", func(s *TilingSettings) { s.MaxTileBytes = 0 }},
		{"zero max dimension", func(s *TilingSettings) { s.MaxDimension = 0 }},
		{"zero tile height", func(s *TilingSettings) { s.TileHeight = 0 }},
		{"negative overlap", func(s *TilingSettings) { s.Overlap = -1 }},
		{"overlap equals tile height", func(s *TilingSettings) { s.Overlap = s.TileHeight }},
		{"zero target width", func(s *TilingSettings) { s.TargetWidth = 0 }},
		{"tile height above max dimension", func(s *TilingSettings) { s.TileHeight = s.MaxDimension + 1 }},
		{"target width above max dimension", func(s *TilingSettings) { s.TargetWidth = s.MaxDimension + 1 }},
		{"empty ladder", func(s *TilingSettings) { s.QualityLadder = nil }},
		{"ladder quality too high", func(s *TilingSettings) { s.QualityLadder = []int{101} }},
		{"shrink ratio one", func(s *TilingSettings) { s.ShrinkRatio = 1 }},
		{"shrink ratio zero", func(s *TilingSettings) { s.ShrinkRatio = 0 }},
		{"shrink quality zero", func(s *TilingSettings) { s.ShrinkQuality = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultTilingSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
}

func TestRetrySettings_Validate(t *testing.T) {
	valid := RetrySettings{MaxRetries: 0, Delay: 0, BackoffMultiplier: 1}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, RetrySettings{MaxRetries: -1, BackoffMultiplier: 1}.Validate(), ErrInvalidSettings)
	assert.ErrorIs(t, RetrySettings{Delay: -time.Second, BackoffMultiplier: 1}.Validate(), ErrInvalidSettings)
	assert.ErrorIs(t, RetrySettings{BackoffMultiplier: 0.5}.Validate(), ErrInvalidSettings)
}

func TestRetrySettings_DelayFor(t *testing.T) {
	t.Run("constant by default", func(t *testing.T) {
		r := RetrySettings{Delay: 3 * time.Second, BackoffMultiplier: 1}
		assert.Equal(t, 3*time.Second, r.DelayFor(1))
		assert.Equal(t, 3*time.Second, r.DelayFor(2))
		assert.Equal(t, 3*time.Second, r.DelayFor(5))
	})

	t.Run("exponential with multiplier", func(t *testing.T) {
		r := RetrySettings{Delay: time.Second, BackoffMultiplier: 2}
		assert.Equal(t, time.Second, r.DelayFor(1))
		assert.Equal(t, 2*time.Second, r.DelayFor(2))
		assert.Equal(t, 4*time.Second, r.DelayFor(3))
	})

	t.Run("saturates instead of overflowing", func(t *testing.T) {
		r := RetrySettings{Delay: time.Hour, BackoffMultiplier: 1000}
		assert.Equal(t, time.Duration(math.MaxInt64), r.DelayFor(10))
		assert.Equal(t, time.Duration(math.MaxInt64), r.DelayFor(1000))
		assert.Positive(t, r.DelayFor(10))
	})
}

func TestTilingSettings_Validate_DimensionsAtLimit(t *testing.T) {
	s := DefaultTilingSettings()
	s.TileHeight = s.MaxDimension
	s.TargetWidth = s.MaxDimension
	assert.NoError(t, s.Validate())
}

func TestPipelineSettings_Validate(t *testing.T) {
	s := DefaultPipelineSettings()
	s.LLM.MaxTokens = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultPipelineSettings()
	s.Input.MaxUploadBytes = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultPipelineSettings()
	s.Retry.MaxRetries = -2
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "", MaskAPIKey(""))
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "****", MaskAPIKey("12345678"))
	assert.Equal(t, "sk-a...wxyz", MaskAPIKey("sk-ant-abcdefwxyz"))
}
