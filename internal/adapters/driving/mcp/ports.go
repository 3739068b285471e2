package mcp

import (
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Analysis runs the screenshot pipeline.
	Analysis driving.AnalysisService

	// Settings exposes pipeline settings. Optional: without it the upload
	// ceiling uses its default and the settings resource is empty.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
