package driving

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// AnalysisService runs the screenshot analysis pipeline.
type AnalysisService interface {
	// Analyze prepares the images, calls the endpoint and extracts the result.
	// Images are consumed: their bytes are released once tiled.
	Analyze(ctx context.Context, images []domain.SourceImage) (*domain.Analysis, error)
}
