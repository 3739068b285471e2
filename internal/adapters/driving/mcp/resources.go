package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for pagelens resources.
	uriScheme = "pagelens://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Current pipeline settings with the API key masked",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "analyses",
		Name:        "analyses",
		Description: "Analyses completed by this server, newest first",
		MIMEType:    "application/json",
	}, s.handleAnalysesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "analyses/{analysisId}",
		Name:        "analysis",
		Description: "Full result of a completed analysis",
		MIMEType:    "application/json",
	}, s.handleAnalysisResource)
}

// handleSettingsResource returns every setting as a key/value list.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	entries, err := s.ports.Settings.Entries()
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}

	type settingInfo struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	infos := make([]settingInfo, len(entries))
	for i, e := range entries {
		infos[i] = settingInfo{Key: e.Key, Value: e.Value}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling settings: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleAnalysesResource lists the recent analyses without their full results.
func (s *Server) handleAnalysesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type analysisInfo struct {
		ID          string `json:"id"`
		ProductName string `json:"product_name"`
		BrandName   string `json:"brand_name"`
		Score       *int   `json:"overall_score,omitempty"`
		ImageCount  int    `json:"image_count"`
		TileCount   int    `json:"tile_count"`
		URI         string `json:"uri"`
	}

	analyses := s.history.list()
	infos := make([]analysisInfo, len(analyses))
	for i, a := range analyses {
		infos[i] = analysisInfo{
			ID:          a.ID,
			ProductName: a.Summary.ProductName,
			BrandName:   a.Summary.BrandName,
			Score:       a.Summary.OverallScore,
			ImageCount:  a.ImageCount,
			TileCount:   a.TileCount,
			URI:         uriScheme + "analyses/" + a.ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling analyses: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleAnalysisResource returns one analysis in full.
func (s *Server) handleAnalysisResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract analysisId from URI: pagelens://analyses/{analysisId}
	id := extractAnalysisID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	analysis, ok := s.history.get(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling analysis: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractAnalysisID extracts the analysis ID from a URI like pagelens://analyses/{analysisId}.
func extractAnalysisID(uri string) string {
	const prefix = uriScheme + "analyses/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
