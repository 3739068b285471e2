// Package services implements the driving port interfaces.
// AnalysisService turns screenshots into one multimodal request, calls the
// endpoint with bounded retry and extracts the JSON result.
// SettingsService maps dotted config keys onto PipelineSettings.
package services
