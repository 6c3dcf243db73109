// Package report renders detection results as shareable plain text.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"isthisai-detection/internal/detector"
)

// previewLength is the number of characters of analyzed text kept in a report
const previewLength = 300

// Text renders a text verdict followed by a preview of the analyzed text
func Text(result detector.DetectionResult, analyzed string) string {
	var b strings.Builder
	writeHeader(&b, result)

	b.WriteString("\n\nAnalyzed Text:\n")
	b.WriteString(preview(analyzed))
	return b.String()
}

// Image renders an image verdict followed by the image's name, dimensions
// and size. Results without decoded features only carry the name.
func Image(result detector.DetectionResult, name string) string {
	var b strings.Builder
	writeHeader(&b, result)

	b.WriteString("\n\nAnalyzed Image:\n")
	b.WriteString(name)
	if img := result.Image; img != nil {
		fmt.Fprintf(&b, "\n%dx%d, %s", img.Width, img.Height, humanize.Bytes(uint64(img.FileSize)))
	}
	return b.String()
}

func writeHeader(b *strings.Builder, result detector.DetectionResult) {
	b.WriteString("IsThisAI Detection Result\n")
	b.WriteString("==========================\n")
	fmt.Fprintf(b, "status: %s\n", result.Verdict())
	fmt.Fprintf(b, "Confidence: %d%%\n", result.Confidence)
	b.WriteString("\ndetection Indicators:")
	for i, r := range result.Reasons {
		fmt.Fprintf(b, "\n%d. %s", i+1, r)
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
