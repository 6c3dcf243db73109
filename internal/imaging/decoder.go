// Package imaging decodes image headers and metadata for the image engine.
// Only the header is decoded; pixel data is never loaded.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage is returned when the bytes are not a recognised image type
	ErrNotImage = errors.New("not an image")
	// ErrInvalidDimensions is returned for images reporting a zero or negative size
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// Source is an image file as handed over by a caller
type Source struct {
	Data     []byte
	FileName string
	// LastModified is zero when the caller does not know it
	LastModified time.Time
}

// Image is the decoded header of an image file
type Image struct {
	Width    int
	Height   int
	Format   string
	MIMEType string
	Metadata map[string]any
}

// Decoder turns raw bytes into an Image
type Decoder struct{}

// NewDecoder creates a decoder with the registered standard and x/image formats
func NewDecoder() *Decoder {
	return &Decoder{}
}

// SniffMIME returns the detected MIME type of data, without parameters
func SniffMIME(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

// IsImageMIME reports whether a MIME type is an image/* type
func IsImageMIME(mt string) bool {
	return strings.HasPrefix(mt, "image/")
}

// Decode reads the image header and metadata of src
func (d *Decoder) Decode(ctx context.Context, src Source) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mt := SniffMIME(src.Data)
	if !IsImageMIME(mt) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s header: %w", mt, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Image{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		MIMEType: mt,
		Metadata: ExtractMetadata(src, mt),
	}, nil
}
