package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	mu       sync.Mutex
	analysis *domain.Analysis
	err      error
	received []domain.SourceImage
}

func (m *mockAnalysisService) Analyze(_ context.Context, images []domain.SourceImage) (*domain.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = images
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.PipelineSettings
	entries  []domain.SettingEntry
	err      error
}

func (m *mockSettingsService) Get() (*domain.PipelineSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings != nil {
		return m.settings, nil
	}
	s := domain.DefaultPipelineSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.PipelineSettings) error { return m.err }

func (m *mockSettingsService) Set(_, _ string) error { return m.err }

func (m *mockSettingsService) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

func (m *mockSettingsService) Entries() ([]domain.SettingEntry, error) {
	return m.entries, m.err
}

func (m *mockSettingsService) SetAPIKey(_ string) error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.PipelineSettings {
	return domain.DefaultPipelineSettings()
}

func testAnalysis(id string) *domain.Analysis {
	score := 72
	return &domain.Analysis{
		ID:     id,
		Result: domain.AnalysisResult{"product_name": "Cloud Pillow", "brand_name": "Nap Co"},
		Summary: domain.Summary{
			ProductName:  "Cloud Pillow",
			BrandName:    "Nap Co",
			OverallScore: &score,
		},
		ImageCount: 2,
		TileCount:  5,
		Attempts:   1,
	}
}
