package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/upload"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// AnalyzeScreenshotsInput is the input schema for the analyze_screenshots tool.
type AnalyzeScreenshotsInput struct {
	Paths []string `json:"paths" jsonschema:"screenshot files in page order (top of the page first)"`
}

// AnalyzeImagesInput is the input schema for the analyze_images tool.
type AnalyzeImagesInput struct {
	Images []ImageInput `json:"images" jsonschema:"screenshots in page order (top of the page first)"`
}

// ImageInput is one base64-encoded screenshot.
type ImageInput struct {
	Name      string `json:"name,omitempty" jsonschema:"file name used in errors and to guess the media type"`
	MediaType string `json:"media_type,omitempty" jsonschema:"media type such as image/png"`
	Data      string `json:"data" jsonschema:"base64 image bytes or a data URL"`
}

// AnalyzeOutput is the output schema for both analyze tools.
type AnalyzeOutput struct {
	ID         string         `json:"id"`
	Summary    domain.Summary `json:"summary"`
	Result     map[string]any `json:"result"`
	ImageCount int            `json:"image_count"`
	TileCount  int            `json:"tile_count"`
	Attempts   int            `json:"attempts"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_screenshots",
		Description: "Analyze landing page screenshots read from local files and return the structured critique",
	}, s.handleAnalyzeScreenshots)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_images",
		Description: "Analyze base64-encoded landing page screenshots and return the structured critique",
	}, s.handleAnalyzeImages)
}

// handleAnalyzeScreenshots handles the analyze_screenshots tool invocation.
func (s *Server) handleAnalyzeScreenshots(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeScreenshotsInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	images, err := upload.ReadFiles(input.Paths, s.maxUploadBytes())
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	return s.analyze(ctx, images)
}

// handleAnalyzeImages handles the analyze_images tool invocation.
func (s *Server) handleAnalyzeImages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeImagesInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	collector := upload.NewCollector(s.maxUploadBytes())
	for i, img := range input.Images {
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image-%d", i+1)
		}
		if err := collector.AddBase64(name, img.MediaType, img.Data); err != nil {
			return nil, AnalyzeOutput{}, err
		}
	}
	return s.analyze(ctx, collector.Images())
}

func (s *Server) analyze(ctx context.Context, images []domain.SourceImage) (*mcp.CallToolResult, AnalyzeOutput, error) {
	analysis, err := s.ports.Analysis.Analyze(ctx, images)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	s.history.add(analysis)

	return nil, AnalyzeOutput{
		ID:         analysis.ID,
		Summary:    analysis.Summary,
		Result:     analysis.Result,
		ImageCount: analysis.ImageCount,
		TileCount:  analysis.TileCount,
		Attempts:   analysis.Attempts,
	}, nil
}

// maxUploadBytes returns the configured submission ceiling.
func (s *Server) maxUploadBytes() int64 {
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil {
			return settings.Input.MaxUploadBytes
		}
	}
	return domain.DefaultPipelineSettings().Input.MaxUploadBytes
}
