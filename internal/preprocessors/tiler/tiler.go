// Package tiler splits screenshots into size-bounded JPEG tiles.
package tiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Tiler implements the interface.
var _ driven.ImageTiler = (*Tiler)(nil)

// Default tiling parameters.
const (
	DefaultMaxTileBytes  = 800_000
	DefaultMaxDimension  = 7900
	DefaultTileHeight    = 4000
	DefaultOverlap       = 200
	DefaultTargetWidth   = 1100
	DefaultShrinkRatio   = 0.75
	DefaultShrinkQuality = 60
)

// DefaultQualityLadder lists the JPEG qualities tried before shrinking.
var DefaultQualityLadder = []int{90, 80, 70, 55}

// Tiler downscales, splits and encodes images so that every tile fits a
// byte budget. It holds no per-call state and is safe for concurrent use.
type Tiler struct {
	maxTileBytes  int
	maxDimension  int
	tileHeight    int
	overlap       int
	targetWidth   int
	ladder        []int
	shrinkRatio   float64
	shrinkQuality int
	scaler        xdraw.Scaler
}

// Option configures the tiler.
type Option func(*Tiler)

// WithMaxTileBytes sets the byte budget for one tile.
func WithMaxTileBytes(n int) Option {
	return func(t *Tiler) {
		if n > 0 {
			t.maxTileBytes = n
		}
	}
}

// WithMaxDimension sets the tallest image sent as a single tile.
func WithMaxDimension(n int) Option {
	return func(t *Tiler) {
		if n > 0 {
			t.maxDimension = n
		}
	}
}

// WithTileHeight sets the sliding window height for tall images.
func WithTileHeight(n int) Option {
	return func(t *Tiler) {
		if n > 0 {
			t.tileHeight = n
		}
	}
}

// WithOverlap sets the rows shared by consecutive tiles.
func WithOverlap(n int) Option {
	return func(t *Tiler) {
		if n >= 0 {
			t.overlap = n
		}
	}
}

// WithTargetWidth sets the width wider images are downscaled to.
func WithTargetWidth(n int) Option {
	return func(t *Tiler) {
		if n > 0 {
			t.targetWidth = n
		}
	}
}

// WithQualityLadder sets the JPEG qualities to try, highest first.
// Qualities outside [1, 100] are dropped.
func WithQualityLadder(qualities ...int) Option {
	return func(t *Tiler) {
		ladder := make([]int, 0, len(qualities))
		for _, q := range qualities {
			if q >= 1 && q <= 100 {
				ladder = append(ladder, q)
			}
		}
		if len(ladder) > 0 {
			t.ladder = ladder
		}
	}
}

// WithShrink sets the per-step scale and JPEG quality used once the
// quality ladder is exhausted.
func WithShrink(ratio float64, quality int) Option {
	return func(t *Tiler) {
		if ratio > 0 && ratio < 1 {
			t.shrinkRatio = ratio
		}
		if quality >= 1 && quality <= 100 {
			t.shrinkQuality = quality
		}
	}
}

// WithScaler sets the resampling filter. Defaults to Catmull-Rom.
func WithScaler(s xdraw.Scaler) Option {
	return func(t *Tiler) {
		if s != nil {
			t.scaler = s
		}
	}
}

// New creates a tiler with the given options.
func New(opts ...Option) *Tiler {
	t := &Tiler{
		maxTileBytes:  DefaultMaxTileBytes,
		maxDimension:  DefaultMaxDimension,
		tileHeight:    DefaultTileHeight,
		overlap:       DefaultOverlap,
		targetWidth:   DefaultTargetWidth,
		ladder:        append([]int(nil), DefaultQualityLadder...),
		shrinkRatio:   DefaultShrinkRatio,
		shrinkQuality: DefaultShrinkQuality,
		scaler:        xdraw.CatmullRom,
	}

	for _, opt := range opts {
		opt(t)
	}

	// Windows must advance
	if t.overlap >= t.tileHeight {
		t.overlap = t.tileHeight / 4
	}

	return t
}

// NewFromSettings creates a tiler from validated settings.
func NewFromSettings(s domain.TilingSettings) (*Tiler, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return New(
		WithMaxTileBytes(s.MaxTileBytes),
		WithMaxDimension(s.MaxDimension),
		WithTileHeight(s.TileHeight),
		WithOverlap(s.Overlap),
		WithTargetWidth(s.TargetWidth),
		WithQualityLadder(s.QualityLadder...),
		WithShrink(s.ShrinkRatio, s.ShrinkQuality),
	), nil
}

// Prepare decodes the image and returns its tiles in top-to-bottom order.
func (t *Tiler) Prepare(ctx context.Context, src domain.SourceImage) ([]domain.Tile, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}
	img = t.downscale(img)

	bounds := img.Bounds()
	spans := Spans(bounds.Dy(), t.maxDimension, t.tileHeight, t.overlap)
	logger.Debug("%s: %dx%d -> %d tile(s)", src.Name, bounds.Dx(), bounds.Dy(), len(spans))

	tiles := make([]domain.Tile, 0, len(spans))
	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The region and any shrunk copies go out of scope once encoded.
		tile, err := t.encode(crop(img, span))
		if err != nil {
			return nil, fmt.Errorf("tile %d of %s: %w", i, src.Name, err)
		}
		tile.Index = i
		tile.Top = span.Top
		tile.Bottom = span.Bottom

		logger.Debug("%s tile %d [%d,%d): %d bytes, q%d, %dx%d, shrunk=%t",
			src.Name, i, span.Top, span.Bottom, tile.Size(), tile.Quality, tile.Width, tile.Height, tile.Shrunk)
		tiles = append(tiles, tile)
	}

	return tiles, nil
}

// decode reads the image and normalises it to an opaque colour model.
func decode(src domain.SourceImage) (image.Image, error) {
	if len(src.Data) == 0 {
		return nil, &domain.DecodeError{Name: src.Name, Err: errors.New("empty input")}
	}

	img, format, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &domain.DecodeError{Name: src.Name, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &domain.DecodeError{Name: src.Name, Err: errors.New("image has no pixels")}
	}
	logger.Debug("%s: decoded %s (declared %s)", src.Name, format, src.MediaType)

	return normalize(img), nil
}

// normalize promotes paletted images to RGBA, keeping transparency, then
// flattens any translucent image onto white. Re-encoding a paletted image
// straight to JPEG can shift colours.
func normalize(img image.Image) image.Image {
	if p, ok := img.(*image.Paletted); ok {
		rgba := image.NewRGBA(p.Bounds())
		xdraw.Draw(rgba, rgba.Bounds(), p, p.Bounds().Min, xdraw.Src)
		img = rgba
	}
	if isOpaque(img) {
		return img
	}

	b := img.Bounds()
	flat := image.NewRGBA(b)
	xdraw.Draw(flat, b, image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.Draw(flat, b, img, b.Min, xdraw.Over)
	return flat
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// downscale shrinks images wider than the target width, keeping aspect ratio.
func (t *Tiler) downscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= t.targetWidth {
		return img
	}
	ratio := float64(t.targetWidth) / float64(b.Dx())
	height := max(1, int(float64(b.Dy())*ratio))
	return resize(img, t.targetWidth, height, t.scaler)
}

func resize(img image.Image, width, height int, scaler xdraw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// crop returns the span of img as a view sharing its pixels.
func crop(img image.Image, span Span) image.Image {
	b := img.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y+span.Top, b.Max.X, b.Min.Y+span.Bottom)
	if r == b {
		return img
	}
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, r.Min, xdraw.Src)
	return dst
}

func encodeJPEG(buf *bytes.Buffer, img image.Image, quality int) error {
	buf.Reset()
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
}
