package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMaxTileBytes      = "tiling.max_tile_bytes"
	keyMaxDimension      = "tiling.max_dimension"
	keyTileHeight        = "tiling.tile_height"
	keyOverlap           = "tiling.overlap"
	keyTargetWidth       = "tiling.target_width"
	keyQualityLadder     = "tiling.quality_ladder"
	keyShrinkRatio       = "tiling.shrink_ratio"
	keyShrinkQuality     = "tiling.shrink_quality"
	keyMaxRetries        = "retry.max_retries"
	keyRetryDelay        = "retry.delay"
	keyBackoffMultiplier = "retry.backoff_multiplier"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMMaxTokens      = "llm.max_tokens"
	keyLLMTimeout        = "llm.timeout"
	keyLLMRequestsPerSec = "llm.requests_per_second"
	keyMaxUploadBytes    = "input.max_upload_bytes"
)

type settingKind int

const (
	kindInt settingKind = iota
	kindFloat
	kindDuration
	kindString
	kindIntList
)

// setting binds a config key to its field in PipelineSettings.
type setting struct {
	key  string
	kind settingKind
	get  func(s *domain.PipelineSettings) any
	set  func(s *domain.PipelineSettings, v any)
}

// settingTable lists every setting in display order.
var settingTable = []setting{
	{keyMaxTileBytes, kindInt,
		func(s *domain.PipelineSettings) any { return s.Tiling.MaxTileBytes },
		func(s *domain.PipelineSettings, v any) { s.Tiling.MaxTileBytes = v.(int) }},
	{keyMaxDimension, kindInt,
		func(s *domain.PipelineSettings) any { return s.Tiling.MaxDimension },
		func(s *domain.PipelineSettings, v any) { s.Tiling.MaxDimension = v.(int) }},
	{keyTileHeight, kindInt,
		func(s *domain.PipelineSettings) any { return s.Tiling.TileHeight },
		func(s *domain.PipelineSettings, v any) { s.Tiling.TileHeight = v.(int) }},
	{keyOverlap, kindInt,
		func(s *domain.PipelineSettings) any { return s.Tiling.Overlap },
		func(s *domain.PipelineSettings, v any) { s.Tiling.Overlap = v.(int) }},
	{keyTargetWidth, kindInt,
		func(s *domain.PipelineSettings) any { return s.Tiling.TargetWidth },
		func(s *domain.PipelineSettings, v any) { s.Tiling.TargetWidth = v.(int) }},
	{keyQualityLadder, kindIntList,
		func(s *domain.PipelineSettings) any { return s.Tiling.QualityLadder },
		func(s *domain.PipelineSettings, v any) { s.Tiling.QualityLadder = v.([]int) }},
	{keyShrinkRatio, kindFloat,
		func(s *domain.PipelineSettings) any { return s.Tiling.ShrinkRatio },
		func(s *domain.PipelineSettings, v any) { s.Tiling.ShrinkRatio = v.(float64) }},
	{keyShrinkQuality, kindInt,
		func(s *domain.PipelineSettings) any { return s.Tiling.ShrinkQuality },
		func(s *domain.PipelineSettings, v any) { s.Tiling.ShrinkQuality = v.(int) }},
	{keyMaxRetries, kindInt,
		func(s *domain.PipelineSettings) any { return s.Retry.MaxRetries },
		func(s *domain.PipelineSettings, v any) { s.Retry.MaxRetries = v.(int) }},
	{keyRetryDelay, kindDuration,
		func(s *domain.PipelineSettings) any { return s.Retry.Delay },
		func(s *domain.PipelineSettings, v any) { s.Retry.Delay = v.(time.Duration) }},
	{keyBackoffMultiplier, kindFloat,
		func(s *domain.PipelineSettings) any { return s.Retry.BackoffMultiplier },
		func(s *domain.PipelineSettings, v any) { s.Retry.BackoffMultiplier = v.(float64) }},
	{keyLLMModel, kindString,
		func(s *domain.PipelineSettings) any { return s.LLM.Model },
		func(s *domain.PipelineSettings, v any) { s.LLM.Model = v.(string) }},
	{keyLLMBaseURL, kindString,
		func(s *domain.PipelineSettings) any { return s.LLM.BaseURL },
		func(s *domain.PipelineSettings, v any) { s.LLM.BaseURL = v.(string) }},
	{keyLLMAPIKey, kindString,
		func(s *domain.PipelineSettings) any { return s.LLM.APIKey },
		func(s *domain.PipelineSettings, v any) { s.LLM.APIKey = v.(string) }},
	{keyLLMMaxTokens, kindInt,
		func(s *domain.PipelineSettings) any { return s.LLM.MaxTokens },
		func(s *domain.PipelineSettings, v any) { s.LLM.MaxTokens = v.(int) }},
	{keyLLMTimeout, kindDuration,
		func(s *domain.PipelineSettings) any { return s.LLM.Timeout },
		func(s *domain.PipelineSettings, v any) { s.LLM.Timeout = v.(time.Duration) }},
	{keyLLMRequestsPerSec, kindFloat,
		func(s *domain.PipelineSettings) any { return s.LLM.RequestsPerSecond },
		func(s *domain.PipelineSettings, v any) { s.LLM.RequestsPerSecond = v.(float64) }},
	{keyMaxUploadBytes, kindInt,
		func(s *domain.PipelineSettings) any { return int(s.Input.MaxUploadBytes) },
		func(s *domain.PipelineSettings, v any) { s.Input.MaxUploadBytes = int64(v.(int)) }},
}

func lookupSetting(key string) (setting, bool) {
	for _, st := range settingTable {
		if st.key == key {
			return st, true
		}
	}
	return setting{}, false
}

// SettingsService manages pipeline settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset or unreadable keys keep their defaults.
func (s *SettingsService) Get() (*domain.PipelineSettings, error) {
	settings := domain.DefaultPipelineSettings()
	for _, st := range settingTable {
		if v, ok := s.read(st); ok {
			st.set(&settings, v)
		}
	}
	return &settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.PipelineSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	for _, st := range settingTable {
		value := st.get(settings)
		if st.key == keyLLMAPIKey && value == "" {
			continue
		}
		if err := s.configStore.Set(st.key, storedValue(st.kind, value)); err != nil {
			return fmt.Errorf("save %s: %w", st.key, err)
		}
	}
	return nil
}

// Set parses value for key and stores it if the resulting settings are valid.
func (s *SettingsService) Set(key, value string) error {
	st, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidSettings, key)
	}

	parsed, err := parseValue(st.kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidSettings, key, err)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	st.set(settings, parsed)
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, storedValue(st.kind, parsed)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised setting key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingTable))
	for i, st := range settingTable {
		keys[i] = st.key
	}
	return keys
}

// Entries returns the current value of every setting in display order.
// The stored API key is masked.
func (s *SettingsService) Entries() ([]domain.SettingEntry, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.SettingEntry, len(settingTable))
	for i, st := range settingTable {
		value := formatValue(st.kind, st.get(settings))
		if st.key == keyLLMAPIKey {
			value = domain.MaskAPIKey(value)
		}
		entries[i] = domain.SettingEntry{Key: st.key, Value: value}
	}
	return entries, nil
}

// SetAPIKey stores the endpoint API key.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key must not be empty", domain.ErrInvalidSettings)
	}
	if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
		return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.PipelineSettings {
	return domain.DefaultPipelineSettings()
}

// read fetches one key from the store in the type its field expects.
func (s *SettingsService) read(st setting) (any, bool) {
	raw, exists := s.configStore.Get(st.key)
	if !exists {
		return nil, false
	}

	switch st.kind {
	case kindInt:
		return s.configStore.GetInt(st.key), true
	case kindFloat:
		return s.configStore.GetFloat(st.key), true
	case kindString:
		return s.configStore.GetString(st.key), true
	case kindDuration:
		d, err := time.ParseDuration(s.configStore.GetString(st.key))
		if err != nil {
			return nil, false
		}
		return d, true
	case kindIntList:
		ladder := toIntSlice(raw)
		if len(ladder) == 0 {
			return nil, false
		}
		return ladder, true
	}
	return nil, false
}

func parseValue(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindDuration:
		return time.ParseDuration(value)
	case kindIntList:
		fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty list")
		}
		list := make([]int, len(fields))
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, err
			}
			list[i] = n
		}
		return list, nil
	default:
		return value, nil
	}
}

// storedValue converts a field value into what the config store persists.
// Durations are stored as strings so the TOML file stays readable.
func storedValue(kind settingKind, v any) any {
	if kind == kindDuration {
		return v.(time.Duration).String()
	}
	return v
}

func formatValue(kind settingKind, v any) string {
	switch kind {
	case kindIntList:
		parts := make([]string, 0, len(v.([]int)))
		for _, n := range v.([]int) {
			parts = append(parts, strconv.Itoa(n))
		}
		return strings.Join(parts, ",")
	case kindDuration:
		return v.(time.Duration).String()
	default:
		return fmt.Sprint(v)
	}
}

func toIntSlice(raw any) []int {
	switch v := raw.(type) {
	case []int:
		return v
	case []int64:
		out := make([]int, len(v))
		for i, n := range v {
			out[i] = int(n)
		}
		return out
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case int:
				out = append(out, n)
			case int64:
				out = append(out, int(n))
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	default:
		return nil
	}
}
