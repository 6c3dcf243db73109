package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exclamationCheck struct{}

func (exclamationCheck) Name() string { return "exclamation" }

func (exclamationCheck) Evaluate(text string, _ TextFeatures) Contribution {
	return Contribution{Points: 5, Evidence: []string{"custom evidence"}}
}

func TestRegistryOrderAndNames(t *testing.T) {
	d := NewTextDetector()
	assert.Equal(t, []string{CheckHumanPattern, CheckAIPhrase, CheckUniformity, CheckTextFlow}, d.Checks().Names())

	img := NewImageDetector(stubDecoder{})
	assert.Equal(t, []string{
		CheckFileName, CheckKnownSize, CheckDivisibleBy64, CheckAspectRatio,
		CheckMinimalMeta, CheckPNGFormat, CheckBytesPerPixel,
	}, img.Checks().Names())
}

func TestRegistryDisableKeepsOtherEvidence(t *testing.T) {
	full := NewTextDetector().Detect(casualText)

	d := NewTextDetector()
	require.NoError(t, d.Checks().Disable(CheckUniformity))
	got := d.Detect(casualText)

	// the uniformity check contributed exactly the diversity line
	want := make([]string, 0, len(full.Reasons))
	for _, r := range full.Reasons {
		if r != "Exeptionally high vocabulary diversity (AI tends to avoid repetition)" {
			want = append(want, r)
		}
	}
	assert.Equal(t, want, got.Reasons)

	require.NoError(t, d.Checks().Enable(CheckUniformity))
	assert.Equal(t, full, d.Detect(casualText))
}

func TestRegistryDisableImageCheck(t *testing.T) {
	d := NewImageDetector(stubDecoder{})
	require.NoError(t, d.Checks().Disable(CheckPNGFormat))

	got := d.Detect(ImageFeatures{Width: 1000, Height: 700, FileSize: 700000, Metadata: meta(2), MIMEType: "image/png"})
	assert.Equal(t, 15, got.Confidence)
	assert.Equal(t, []string{"Minimal metadata found - common in AI-generated images"}, got.Reasons)
}

func TestRegistryErrors(t *testing.T) {
	r := NewTextDetector().Checks()

	err := r.Register(aiPhraseCheck{})
	assert.EqualError(t, err, "check ai-phrase already registered")

	_, err = r.Get("missing")
	assert.EqualError(t, err, "check missing not found")

	assert.Error(t, r.Disable("missing"))
	assert.Error(t, r.Enable("missing"))
}

func TestRegistryCustomCheckAppendsLast(t *testing.T) {
	d := NewTextDetector()
	require.NoError(t, d.Checks().Register(exclamationCheck{}))

	c, err := d.Checks().Get("exclamation")
	require.NoError(t, err)
	assert.Equal(t, "exclamation", c.Name())

	got := d.Detect(variedText)
	assert.Equal(t, []string{
		"Very consistent sentence structure",
		"Varied sentence structure - human pattern",
		"custom evidence",
	}, got.Reasons)
	assert.Equal(t, 7, got.Confidence)
}
