package domain

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

// Media types understood by the pipeline.
const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
	MediaTypeWebP = "image/webp"
	MediaTypeGIF  = "image/gif"
)

// SourceImage is a raw screenshot submitted for analysis.
// The bytes are owned by the pipeline for the duration of one analysis
// and are dropped as soon as the image has been tiled.
type SourceImage struct {
	// Name identifies the image in logs and errors (usually the file name).
	Name string

	// MediaType is the declared media type. It is informational only;
	// the actual format is sniffed when decoding.
	MediaType string

	// Data holds the encoded image bytes.
	Data []byte
}

// Size returns the number of encoded bytes still held by the image.
func (s *SourceImage) Size() int {
	return len(s.Data)
}

// Release drops the image bytes so they can be reclaimed.
func (s *SourceImage) Release() {
	s.Data = nil
}

// Tile is one size-bounded JPEG segment of a source image.
// Tiles of the same image are ordered top to bottom and may overlap.
type Tile struct {
	// Data is the encoded JPEG.
	Data []byte

	// MediaType is always MediaTypeJPEG.
	MediaType string

	// Index is the tile position within its source image.
	Index int

	// Top and Bottom delimit the vertical span [Top, Bottom) in the
	// downscaled source image.
	Top    int
	Bottom int

	// Width and Height are the encoded pixel dimensions.
	Width  int
	Height int

	// Quality is the JPEG quality the tile was encoded at.
	Quality int

	// Shrunk reports whether the tile had to be resized below its
	// span to fit the byte budget.
	Shrunk bool
}

// Size returns the encoded size of the tile in bytes.
func (t Tile) Size() int {
	return len(t.Data)
}

// Content block types.
const (
	BlockTypeImage = "image"
	BlockTypeText  = "text"
)

// ContentBlock is one unit of the request content sequence.
type ContentBlock struct {
	// Type is BlockTypeImage or BlockTypeText.
	Type string

	// MediaType is set for image blocks.
	MediaType string

	// Data is the base64 (standard encoding) image payload.
	Data string

	// Text is set for text blocks.
	Text string
}

// NewImageBlock wraps an encoded tile as an image content block.
func NewImageBlock(tile Tile) ContentBlock {
	return ContentBlock{
		Type:      BlockTypeImage,
		MediaType: tile.MediaType,
		Data:      base64.StdEncoding.EncodeToString(tile.Data),
	}
}

// NewTextBlock creates a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{
		Type: BlockTypeText,
		Text: text,
	}
}

// RequestPayload is a fully assembled multimodal request.
// Blocks hold every image block in image and tile order followed by
// exactly one trailing text block.
type RequestPayload struct {
	// System is the system-level instruction, sent outside the content.
	System string

	// Blocks is the ordered content sequence.
	Blocks []ContentBlock
}

// ImageBlockCount returns the number of image blocks in the payload.
func (p *RequestPayload) ImageBlockCount() int {
	n := 0
	for i := range p.Blocks {
		if p.Blocks[i].Type == BlockTypeImage {
			n++
		}
	}
	return n
}

// EncodedSize returns the total length of the base64 image data.
func (p *RequestPayload) EncodedSize() int {
	n := 0
	for i := range p.Blocks {
		n += len(p.Blocks[i].Data)
	}
	return n
}

// Release drops the content blocks once the request has been sent.
func (p *RequestPayload) Release() {
	p.Blocks = nil
}

// MediaTypeFromFilename maps a file extension to a media type.
// Unknown extensions default to JPEG.
func MediaTypeFromFilename(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "jpg", "jpeg":
		return MediaTypeJPEG
	case "png":
		return MediaTypePNG
	case "webp":
		return MediaTypeWebP
	case "gif":
		return MediaTypeGIF
	default:
		return MediaTypeJPEG
	}
}
