package detector

import (
	"context"
	"fmt"
	"math"
	"strings"

	"isthisai-detection/internal/imaging"
)

// Image check names
const (
	CheckFileName      = "filename"
	CheckKnownSize     = "known-resolution"
	CheckDivisibleBy64 = "divisible-by-64"
	CheckAspectRatio   = "aspect-ratio"
	CheckMinimalMeta   = "minimal-metadata"
	CheckPNGFormat     = "png-format"
	CheckBytesPerPixel = "bytes-per-pixel"
)

// ImageDecoder is the collaborator that reads image headers and metadata
type ImageDecoder interface {
	Decode(ctx context.Context, src imaging.Source) (*imaging.Image, error)
}

// ImageDetector scores images from their dimensions, size and metadata
type ImageDetector struct {
	decoder ImageDecoder
	checks  *Registry[ImageCheck]
}

// NewImageDetector creates a detector using decoder for file input
func NewImageDetector(decoder ImageDecoder) *ImageDetector {
	return &ImageDetector{
		decoder: decoder,
		checks: NewRegistry[ImageCheck](
			fileNameCheck{},
			knownResolutionCheck{},
			divisibleBy64Check{},
			aspectRatioCheck{},
			minimalMetadataCheck{},
			pngFormatCheck{},
			bytesPerPixelCheck{},
		),
	}
}

// Checks exposes the detector's check registry
func (d *ImageDetector) Checks() *Registry[ImageCheck] {
	return d.checks
}

// Detect scores already extracted image features
func (d *ImageDetector) Detect(features ImageFeatures) DetectionResult {
	features.FileName = strings.ToLower(features.FileName)

	score := 0
	reasons := make([]string, 0)
	for _, check := range d.checks.Enabled() {
		c := check.Evaluate(features)
		score += c.Points
		reasons = append(reasons, c.Evidence...)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, reasonImageInconclusive)
	}

	confidence := clampConfidence(score)
	return DetectionResult{
		IsAI:       confidence > imageAIThreshold,
		Confidence: confidence,
		Reasons:    reasons,
		Category:   CategoryImage,
		Image:      &features,
	}
}

// DetectFromFile decodes src with the decoder and scores the result. A
// decode failure yields a zero-confidence result naming the failure.
func (d *ImageDetector) DetectFromFile(ctx context.Context, src imaging.Source) DetectionResult {
	img, err := d.decoder.Decode(ctx, src)
	if err != nil {
		return DecodeFailure(err)
	}

	return d.Detect(ImageFeatures{
		Width:    img.Width,
		Height:   img.Height,
		FileSize: int64(len(src.Data)),
		Metadata: img.Metadata,
		MIMEType: img.MIMEType,
		FileName: src.FileName,
	})
}

// DecodeFailure builds the result reported when an image cannot be decoded
func DecodeFailure(err error) DetectionResult {
	return DetectionResult{
		IsAI:       false,
		Confidence: 0,
		Reasons:    []string{reasonImageFailedPrefix + err.Error()},
		Category:   CategoryImage,
	}
}

// DetectFromURL scores an image by its URL alone: hosting domain and file name
func (d *ImageDetector) DetectFromURL(rawURL string) DetectionResult {
	score := 0
	reasons := make([]string, 0)

	for _, domain := range ImagePatterns.HostingDomains {
		if strings.Contains(rawURL, domain) {
			score += 60
			reasons = append(reasons, "Image hosted on known AI generation platform")
			break
		}
	}

	if matchesFileNameKeyword(urlFileName(rawURL)) {
		score += 40
		reasons = append(reasons, "Filename suggests AI generation")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, reasonURLInconclusive)
	}

	return DetectionResult{
		IsAI:       score > imageAIThreshold,
		Confidence: int(math.Min(100, float64(score))),
		Reasons:    reasons,
		Category:   CategoryImage,
	}
}

// urlFileName returns the lower-cased text after the last "/"
func urlFileName(rawURL string) string {
	return strings.ToLower(rawURL[strings.LastIndex(rawURL, "/")+1:])
}

func matchesFileNameKeyword(name string) bool {
	for _, kw := range ImagePatterns.FileNameKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

type fileNameCheck struct{}

func (fileNameCheck) Name() string { return CheckFileName }

func (fileNameCheck) Evaluate(f ImageFeatures) Contribution {
	if !matchesFileNameKeyword(f.FileName) {
		return Contribution{}
	}
	return Contribution{Points: 40, Evidence: []string{"Filename suggests AI generation"}}
}

type knownResolutionCheck struct{}

func (knownResolutionCheck) Name() string { return CheckKnownSize }

func (knownResolutionCheck) Evaluate(f ImageFeatures) Contribution {
	for _, r := range ImagePatterns.Resolutions {
		if r.Width == f.Width && r.Height == f.Height {
			return Contribution{Points: 25, Evidence: []string{
				fmt.Sprintf("Perfect square/standard dimensions (%dx%d) common in AI images", f.Width, f.Height),
			}}
		}
	}
	return Contribution{}
}

type divisibleBy64Check struct{}

func (divisibleBy64Check) Name() string { return CheckDivisibleBy64 }

func (divisibleBy64Check) Evaluate(f ImageFeatures) Contribution {
	if f.Width%64 == 0 && f.Height%64 == 0 && (f.Width > 512 || f.Height > 512) {
		return Contribution{Points: 20, Evidence: []string{
			fmt.Sprintf("Dimensions perfectly divisible by 64 (%dx%d) - common in AI-generated images", f.Width, f.Height),
		}}
	}
	return Contribution{}
}

type aspectRatioCheck struct{}

func (aspectRatioCheck) Name() string { return CheckAspectRatio }

func (aspectRatioCheck) Evaluate(f ImageFeatures) Contribution {
	ratio := float64(f.Width) / float64(f.Height)

	matches := false
	for _, ar := range ImagePatterns.AspectRatios {
		if math.Abs(ratio-ar.Ratio) < ar.Tolerance {
			matches = true
			break
		}
	}

	if matches && f.Width%8 == 0 && f.Height%8 == 0 {
		return Contribution{Points: 15, Evidence: []string{
			fmt.Sprintf("Aspect ratio (%.2f) matches common AI generation ratios", ratio),
		}}
	}
	return Contribution{}
}

type minimalMetadataCheck struct{}

func (minimalMetadataCheck) Name() string { return CheckMinimalMeta }

// Every exif.<Tag> entry counts as a key, so a camera JPEG with a full EXIF
// block does not score here.
func (minimalMetadataCheck) Evaluate(f ImageFeatures) Contribution {
	if len(f.Metadata) <= minimalMetadataKeys {
		return Contribution{Points: 15, Evidence: []string{"Minimal metadata found - common in AI-generated images"}}
	}
	return Contribution{}
}

type pngFormatCheck struct{}

func (pngFormatCheck) Name() string { return CheckPNGFormat }

func (pngFormatCheck) Evaluate(f ImageFeatures) Contribution {
	if f.MIMEType == "image/png" {
		return Contribution{Points: 10, Evidence: []string{
			"PNG format detected - often used for AI-generated images due to lossless compression",
		}}
	}
	return Contribution{}
}

type bytesPerPixelCheck struct{}

func (bytesPerPixelCheck) Name() string { return CheckBytesPerPixel }

func (bytesPerPixelCheck) Evaluate(f ImageFeatures) Contribution {
	pixels := float64(f.Width) * float64(f.Height)
	bpp := float64(f.FileSize) / pixels

	switch {
	case bpp < lowBytesPerPixel:
		return Contribution{Points: 15, Evidence: []string{"very low bytes per pixel - possible indicator of AI generation"}}
	case bpp > highBytesPerPixel && f.FileSize < unusualSizeCeiling:
		return Contribution{Points: 10, Evidence: []string{"Unusual file size - possible indicator of AI generation"}}
	default:
		return Contribution{}
	}
}
