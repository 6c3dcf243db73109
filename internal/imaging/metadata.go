package imaging

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExtractMetadata collects file attributes plus one "exif.<Tag>" entry per
// EXIF tag. Files without EXIF yield only the file attributes. The EXIF
// entries push camera photos past the minimal-metadata key count.
func ExtractMetadata(src Source, mimeType string) map[string]any {
	metadata := map[string]any{
		"type": mimeType,
		"name": src.FileName,
	}
	if !src.LastModified.IsZero() {
		metadata["lastModified"] = src.LastModified.UnixMilli()
	}

	x, err := exif.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return metadata
	}
	_ = x.Walk(exifCollector(metadata))
	return metadata
}

type exifCollector map[string]any

func (c exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	value := strings.Trim(tag.String(), `"`)
	c["exif."+string(name)] = value
	return nil
}
