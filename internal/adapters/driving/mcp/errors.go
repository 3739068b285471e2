// Package mcp provides an MCP (Model Context Protocol) server adapter for pagelens.
// It lets AI assistants submit landing page screenshots for analysis and read
// back recent results.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")
