// Package domain defines the core entities of the pagelens pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceImage: Raw screenshot bytes submitted for analysis
//   - Tile: A size-bounded JPEG segment of a source image
//   - RequestPayload: The assembled multimodal request
//   - AnalysisResult: The JSON record recovered from the reply
//   - PipelineSettings: Tiling, retry and endpoint configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
