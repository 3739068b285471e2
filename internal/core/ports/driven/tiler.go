package driven

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// ImageTiler turns a source image into ordered, size-bounded JPEG tiles.
type ImageTiler interface {
	// Prepare decodes, downscales, splits and encodes the image.
	// The returned tiles are in top-to-bottom order and never empty for a
	// decodable image. Undecodable input yields a *domain.DecodeError.
	Prepare(ctx context.Context, img domain.SourceImage) ([]domain.Tile, error)
}
