// Package upload turns caller submissions into source images while
// enforcing a ceiling on the total submitted bytes.
package upload

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// Collector accumulates source images for one analysis.
// It is not safe for concurrent use.
type Collector struct {
	max    int64
	used   int64
	images []domain.SourceImage
}

// NewCollector creates a collector accepting at most maxBytes in total.
// Zero or negative disables the ceiling.
func NewCollector(maxBytes int64) *Collector {
	return &Collector{max: maxBytes}
}

// ReadFiles reads every path into a source image.
func ReadFiles(paths []string, maxBytes int64) ([]domain.SourceImage, error) {
	c := NewCollector(maxBytes)
	for _, p := range paths {
		if err := c.AddFile(p); err != nil {
			return nil, err
		}
	}
	return c.Images(), nil
}

// AddFile reads an image file. The media type comes from the extension.
func (c *Collector) AddFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if err := c.check(path, info.Size()); err != nil {
		return err
	}

	// The file may grow between Stat and read.
	r := io.Reader(f)
	if c.max > 0 {
		r = io.LimitReader(f, c.max-c.used+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	return c.AddBytes(name, domain.MediaTypeFromFilename(name), data)
}

// AddBase64 decodes a base64 image. data may be a data URL, in which case
// its media type is used when mediaType is empty.
func (c *Collector) AddBase64(name, mediaType, data string) error {
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return fmt.Errorf("%s: unsupported data URL", name)
		}
		if mediaType == "" {
			mediaType = strings.TrimSuffix(header, ";base64")
		}
		data = payload
	}

	// DecodedLen over-estimates by at most two bytes of padding.
	if err := c.check(name, int64(base64.StdEncoding.DecodedLen(len(data)))-2); err != nil {
		return err
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("%s: invalid base64: %w", name, err)
	}

	return c.AddBytes(name, mediaType, decoded)
}

// AddBytes adds raw image bytes. An empty media type is derived from name.
func (c *Collector) AddBytes(name, mediaType string, data []byte) error {
	if err := c.check(name, int64(len(data))); err != nil {
		return err
	}
	c.used += int64(len(data))
	if mediaType == "" {
		mediaType = domain.MediaTypeFromFilename(name)
	}
	c.images = append(c.images, domain.SourceImage{Name: name, MediaType: mediaType, Data: data})
	return nil
}

// Images returns the collected images in submission order.
func (c *Collector) Images() []domain.SourceImage {
	return c.images
}

// Size returns the total bytes collected so far.
func (c *Collector) Size() int64 {
	return c.used
}

// check reports whether n more bytes fit under the ceiling.
func (c *Collector) check(name string, n int64) error {
	if c.max > 0 && c.used+n > c.max {
		return fmt.Errorf("%w: %s brings the total to %d bytes, limit is %d",
			domain.ErrTooLarge, name, c.used+n, c.max)
	}
	return nil
}
