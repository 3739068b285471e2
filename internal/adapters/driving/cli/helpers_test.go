package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

type mockAnalysisService struct {
	mu          sync.Mutex
	analysis    *domain.Analysis
	err         error
	received    []domain.SourceImage
	hasDeadline bool
}

func (m *mockAnalysisService) Analyze(ctx context.Context, images []domain.SourceImage) (*domain.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = images
	_, m.hasDeadline = ctx.Deadline()
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

type mockSettingsService struct {
	settings *domain.PipelineSettings
	entries  []domain.SettingEntry
	err      error
	setCalls [][2]string
	apiKey   string
	saved    *domain.PipelineSettings
}

func (m *mockSettingsService) Get() (*domain.PipelineSettings, error) {
	if m.settings != nil {
		return m.settings, nil
	}
	s := domain.DefaultPipelineSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.PipelineSettings) error {
	if m.err != nil {
		return m.err
	}
	m.saved = settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.setCalls = append(m.setCalls, [2]string{key, value})
	return nil
}

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

func (m *mockSettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key must not be empty", domain.ErrInvalidSettings)
	}
	m.apiKey = apiKey
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.PipelineSettings {
	return domain.DefaultPipelineSettings()
}

type mockPromptSource struct {
	dir     string
	prompts map[string]string
}

func (m *mockPromptSource) Dir() string { return m.dir }

func (m *mockPromptSource) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt: %s", name)
	}
	return p, nil
}

type mockKeyChecker struct {
	err    error
	gotKey string
}

func (m *mockKeyChecker) Ping(_ context.Context, apiKey string) error {
	m.gotKey = apiKey
	return m.err
}

type staticKey string

func (k staticKey) APIKey() string { return string(k) }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	analysis *mockAnalysisService
	settings *mockSettingsService
	prompts  *mockPromptSource
	checker  *mockKeyChecker
}

// setupTestServices installs mocks for every service and restores the
// previous ones when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	prevAnalysis, prevSettings, prevPrompts := analysisService, settingsService, promptSource
	prevChecker, prevKeys := keyChecker, keySource
	t.Cleanup(func() {
		analysisService, settingsService, promptSource = prevAnalysis, prevSettings, prevPrompts
		keyChecker, keySource = prevChecker, prevKeys
	})

	ts := &testServices{
		analysis: &mockAnalysisService{analysis: testAnalysis()},
		settings: &mockSettingsService{},
		prompts: &mockPromptSource{
			dir: "/home/test/.pagelens/prompts",
			prompts: map[string]string{
				driven.PromptAnalysisSystem: "system prompt text",
				driven.PromptAnalysisUser:   "user prompt text",
			},
		},
		checker: &mockKeyChecker{},
	}
	SetServices(Services{
		Analysis: ts.analysis,
		Settings: ts.settings,
		Prompts:  ts.prompts,
		Checker:  ts.checker,
		Keys:     staticKey("sk-ant-test-1234567890"),
	})
	return ts
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so package-level commands
// do not leak state between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func testAnalysis() *domain.Analysis {
	score := 72
	return &domain.Analysis{
		ID: "run-1",
		Result: domain.AnalysisResult{
			"product_name": "Cloud Pillow",
			"strengths":    []any{"Clear hero message", "Strong reviews"},
			"weaknesses":   []any{"CTA below the fold"},
		},
		Summary: domain.Summary{
			ProductName:  "Cloud Pillow",
			BrandName:    "Nap Co",
			Category:     "bedding",
			OverallScore: &score,
		},
		ImageCount: 2,
		TileCount:  5,
		Attempts:   1,
	}
}

