package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"isthisai-detection/internal/detector"
)

func TestText(t *testing.T) {
	result := detector.DetectionResult{
		IsAI:       true,
		Confidence: 87,
		Reasons:    []string{`Contains phrase: "moreover"`, "Very uniform sentence length - AI pattern"},
		Category:   detector.CategoryText,
	}

	got := Text(result, "Moreover, the results are clear.")
	want := `IsThisAI Detection Result
==========================
status: Likely AI-Generated
Confidence: 87%

detection Indicators:
1. Contains phrase: "moreover"
2. Very uniform sentence length - AI pattern

Analyzed Text:
Moreover, the results are clear.`
	assert.Equal(t, want, got)
}

func TestTextTruncatesPreview(t *testing.T) {
	result := detector.DetectionResult{Reasons: []string{"x"}, Category: detector.CategoryText}

	long := strings.Repeat("ü", 301)
	got := Text(result, long)
	assert.True(t, strings.HasSuffix(got, strings.Repeat("ü", 300)+"..."))
	assert.Contains(t, got, "status: Likely Human-Written")

	exact := strings.Repeat("a", 300)
	assert.True(t, strings.HasSuffix(Text(result, exact), "\n"+exact))
}

func TestImage(t *testing.T) {
	result := detector.DetectionResult{
		IsAI:       true,
		Confidence: 100,
		Reasons:    []string{"PNG format detected - often used for AI-generated images due to lossless compression"},
		Category:   detector.CategoryImage,
		Image:      &detector.ImageFeatures{Width: 1024, Height: 1024, FileSize: 2_500_000, MIMEType: "image/png"},
	}

	got := Image(result, "render.png")
	assert.True(t, strings.HasSuffix(got, "Analyzed Image:\nrender.png\n1024x1024, 2.5 MB"), got)
}

func TestImageWithoutFeatures(t *testing.T) {
	result := detector.DecodeFailure(assert.AnError)
	got := Image(result, "broken.png")
	assert.True(t, strings.HasSuffix(got, "Analyzed Image:\nbroken.png"), got)
	assert.Contains(t, got, "Confidence: 0%")
}
