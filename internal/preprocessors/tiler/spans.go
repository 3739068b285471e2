package tiler

// Span is a vertical range [Top, Bottom) of an image.
type Span struct {
	Top    int
	Bottom int
}

// Height returns the number of rows in the span.
func (s Span) Height() int {
	return s.Bottom - s.Top
}

// Spans splits an image of the given height into tile spans.
//
// Images no taller than maxDimension form a single span. Taller images are
// covered by windows of tileHeight rows; each window starts overlap rows
// above the previous window's bottom so text cut at a boundary appears
// whole in one of the tiles. The last window ends exactly at height.
func Spans(height, maxDimension, tileHeight, overlap int) []Span {
	if height <= 0 {
		return nil
	}
	if height <= maxDimension || tileHeight <= 0 {
		return []Span{{Top: 0, Bottom: height}}
	}
	if overlap < 0 || overlap >= tileHeight {
		overlap = 0
	}

	spans := make([]Span, 0, height/(tileHeight-overlap)+1)
	top := 0
	for {
		bottom := min(top+tileHeight, height)
		spans = append(spans, Span{Top: top, Bottom: bottom})
		if bottom == height {
			break
		}
		top = bottom - overlap
	}
	return spans
}
