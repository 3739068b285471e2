package tiler

import (
	"bytes"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

type encodeState int

const (
	// stateLadder tries ladder[step] at full size.
	stateLadder encodeState = iota
	// stateShrink scales the image down and encodes at shrinkQuality.
	stateShrink
)

// encode returns the first JPEG encoding of img that fits the byte budget.
//
// The ladder phase is bounded by len(ladder). The shrink phase removes at
// least one row or column per step, so pixel count strictly decreases and
// the loop ends at 1x1 at the latest.
func (t *Tiler) encode(img image.Image) (domain.Tile, error) {
	var buf bytes.Buffer
	state := stateLadder
	step := 0

	for {
		switch state {
		case stateLadder:
			quality := t.ladder[step]
			if err := encodeJPEG(&buf, img, quality); err != nil {
				return domain.Tile{}, fmt.Errorf("encode jpeg: %w", err)
			}
			if buf.Len() <= t.maxTileBytes {
				return newTile(&buf, img, quality, false), nil
			}
			step++
			if step == len(t.ladder) {
				state = stateShrink
			}

		case stateShrink:
			smaller, ok := shrink(img, t.shrinkRatio, t.scaler)
			if !ok {
				return domain.Tile{}, fmt.Errorf("%w: %d bytes at 1x1 exceeds %d",
					domain.ErrBudgetUnreachable, buf.Len(), t.maxTileBytes)
			}
			img = smaller
			if err := encodeJPEG(&buf, img, t.shrinkQuality); err != nil {
				return domain.Tile{}, fmt.Errorf("encode jpeg: %w", err)
			}
			if buf.Len() <= t.maxTileBytes {
				return newTile(&buf, img, t.shrinkQuality, true), nil
			}
		}
	}
}

// shrink scales img by ratio, removing at least one pixel from every
// dimension larger than one. It reports false when img is already 1x1.
func shrink(img image.Image, ratio float64, scaler xdraw.Scaler) (image.Image, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 1 && h <= 1 {
		return img, false
	}
	return resize(img, shrinkDim(w, ratio), shrinkDim(h, ratio), scaler), true
}

func shrinkDim(n int, ratio float64) int {
	next := int(float64(n) * ratio)
	if next >= n {
		next = n - 1
	}
	return max(1, next)
}

func newTile(buf *bytes.Buffer, img image.Image, quality int, shrunk bool) domain.Tile {
	b := img.Bounds()
	return domain.Tile{
		Data:      bytes.Clone(buf.Bytes()),
		MediaType: domain.MediaTypeJPEG,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Quality:   quality,
		Shrunk:    shrunk,
	}
}
