package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isthisai-detection/internal/imaging"
)

type stubDecoder struct {
	img *imaging.Image
	err error
}

func (s stubDecoder) Decode(_ context.Context, _ imaging.Source) (*imaging.Image, error) {
	return s.img, s.err
}

func meta(n int) map[string]any {
	m := make(map[string]any, n)
	for i := 0; i < n; i++ {
		m[string(rune('a'+i))] = i
	}
	return m
}

func TestImageDetectKnownGeneratorOutput(t *testing.T) {
	d := NewImageDetector(stubDecoder{})
	got := d.Detect(ImageFeatures{
		Width:    1024,
		Height:   1024,
		FileSize: 200000,
		Metadata: meta(3),
		MIMEType: "image/png",
		FileName: "photo.png",
	})

	// 25 resolution + 20 divisible + 15 ratio + 15 metadata + 10 png + 15 bpp
	assert.Equal(t, 100, got.Confidence)
	assert.True(t, got.IsAI)
	assert.Equal(t, []string{
		"Perfect square/standard dimensions (1024x1024) common in AI images",
		"Dimensions perfectly divisible by 64 (1024x1024) - common in AI-generated images",
		"Aspect ratio (1.00) matches common AI generation ratios",
		"Minimal metadata found - common in AI-generated images",
		"PNG format detected - often used for AI-generated images due to lossless compression",
		"very low bytes per pixel - possible indicator of AI generation",
	}, got.Reasons)
	assert.Equal(t, CategoryImage, got.Category)
	assert.NotNil(t, got.Image)
}

func TestImageDetectChecks(t *testing.T) {
	tests := []struct {
		name     string
		features ImageFeatures
		want     int
		isAI     bool
		reasons  []string
	}{
		{
			name:     "filename keyword is case-insensitive",
			features: ImageFeatures{Width: 1000, Height: 700, FileSize: 700000, Metadata: meta(6), MIMEType: "image/jpeg", FileName: "Midjourney_Cat.JPG"},
			want:     40,
			reasons:  []string{"Filename suggests AI generation"},
		},
		{
			name:     "4:3 photo",
			features: ImageFeatures{Width: 800, Height: 600, FileSize: 480000, Metadata: meta(10), MIMEType: "image/jpeg"},
			want:     15,
			reasons:  []string{"Aspect ratio (1.33) matches common AI generation ratios"},
		},
		{
			name:     "ratio match needs multiples of 8",
			features: ImageFeatures{Width: 801, Height: 601, FileSize: 480000, Metadata: meta(10), MIMEType: "image/jpeg"},
			want:     0,
			reasons:  []string{reasonImageInconclusive},
		},
		{
			name:     "high bytes per pixel under 5MB",
			features: ImageFeatures{Width: 500, Height: 300, FileSize: 700000, Metadata: meta(5), MIMEType: "image/jpeg"},
			want:     10,
			reasons:  []string{"Unusual file size - possible indicator of AI generation"},
		},
		{
			name:     "high bytes per pixel at 5MB does not fire",
			features: ImageFeatures{Width: 1000, Height: 700, FileSize: 5000000, Metadata: meta(5), MIMEType: "image/jpeg"},
			want:     0,
			reasons:  []string{reasonImageInconclusive},
		},
		{
			name:     "divisible by 64 needs a side over 512",
			features: ImageFeatures{Width: 448, Height: 320, FileSize: 143360, Metadata: meta(5), MIMEType: "image/jpeg"},
			want:     0,
			reasons:  []string{reasonImageInconclusive},
		},
		{
			name:     "divisible by 64 and large",
			features: ImageFeatures{Width: 1216, Height: 832, FileSize: 1011712, Metadata: meta(5), MIMEType: "image/jpeg"},
			want:     20,
			reasons:  []string{"Dimensions perfectly divisible by 64 (1216x832) - common in AI-generated images"},
		},
		{
			name:     "divisible by 64 near 4:3",
			features: ImageFeatures{Width: 1152, Height: 896, FileSize: 1032192, Metadata: meta(5), MIMEType: "image/jpeg"},
			want:     35,
			reasons: []string{
				"Dimensions perfectly divisible by 64 (1152x896) - common in AI-generated images",
				"Aspect ratio (1.29) matches common AI generation ratios",
			},
		},
		{
			name:     "midjourney wide",
			features: ImageFeatures{Width: 1344, Height: 768, FileSize: 1032192, Metadata: meta(5), MIMEType: "image/webp"},
			want:     60,
			isAI:     true,
			reasons: []string{
				"Perfect square/standard dimensions (1344x768) common in AI images",
				"Dimensions perfectly divisible by 64 (1344x768) - common in AI-generated images",
				"Aspect ratio (1.75) matches common AI generation ratios",
			},
		},
		{
			name:     "filename and minimal metadata",
			features: ImageFeatures{Width: 1000, Height: 700, FileSize: 700000, Metadata: meta(2), MIMEType: "image/jpeg", FileName: "generated.jpg"},
			want:     55,
			isAI:     true,
			reasons:  []string{"Filename suggests AI generation", "Minimal metadata found - common in AI-generated images"},
		},
		{
			name: "camera jpeg with exif",
			features: ImageFeatures{Width: 1000, Height: 700, FileSize: 700000, MIMEType: "image/jpeg", Metadata: map[string]any{
				"type": "image/jpeg", "name": "IMG_0042.jpg", "lastModified": int64(1709294400000),
				"exif.Make": `"Canon"`, "exif.Model": `"EOS R6"`,
			}},
			want:    0,
			reasons: []string{reasonImageInconclusive},
		},
		{
			name: "same jpeg with exif stripped",
			features: ImageFeatures{Width: 1000, Height: 700, FileSize: 700000, MIMEType: "image/jpeg", Metadata: map[string]any{
				"type": "image/jpeg", "name": "IMG_0042.jpg", "lastModified": int64(1709294400000),
			}},
			want:    15,
			reasons: []string{"Minimal metadata found - common in AI-generated images"},
		},
		{
			name:     "plain png",
			features: ImageFeatures{Width: 1000, Height: 700, FileSize: 700000, Metadata: meta(2), MIMEType: "image/png", FileName: "holiday.png"},
			want:     25,
			reasons: []string{
				"Minimal metadata found - common in AI-generated images",
				"PNG format detected - often used for AI-generated images due to lossless compression",
			},
		},
	}

	d := NewImageDetector(stubDecoder{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.features)
			assert.Equal(t, tt.want, got.Confidence)
			assert.Equal(t, tt.isAI, got.IsAI)
			assert.Equal(t, tt.reasons, got.Reasons)
		})
	}
}

func TestImageThresholdIsStrict(t *testing.T) {
	d := NewImageDetector(stubDecoder{})
	// 40 filename + 10 png = 50, which is not above the threshold
	got := d.Detect(ImageFeatures{Width: 1000, Height: 700, FileSize: 700000, Metadata: meta(6), MIMEType: "image/png", FileName: "synthetic.png"})
	assert.Equal(t, 50, got.Confidence)
	assert.False(t, got.IsAI)
}

func TestDetectFromFileDecodeFailure(t *testing.T) {
	d := NewImageDetector(stubDecoder{err: errors.New("unexpected EOF")})
	got := d.DetectFromFile(context.Background(), imaging.Source{Data: []byte{1, 2, 3}, FileName: "x.png"})

	assert.False(t, got.IsAI)
	assert.Equal(t, 0, got.Confidence)
	assert.Equal(t, []string{"failed to analyze image: unexpected EOF"}, got.Reasons)
	assert.Nil(t, got.Image, "failed decode should not echo features")
}

func TestDetectFromFileUsesDecodedFeatures(t *testing.T) {
	d := NewImageDetector(stubDecoder{img: &imaging.Image{
		Width: 768, Height: 1024, MIMEType: "image/jpeg", Metadata: meta(12),
	}})
	data := make([]byte, 768*1024)
	got := d.DetectFromFile(context.Background(), imaging.Source{Data: data, FileName: "portrait.jpg"})

	// 25 resolution + 20 divisible + 15 ratio (0.75)
	assert.Equal(t, 60, got.Confidence)
	assert.True(t, got.IsAI)
	require.NotNil(t, got.Image)
	assert.Equal(t, int64(len(data)), got.Image.FileSize)
}

func TestDetectFromFileRealPNG(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, image.NewGray(image.Rect(0, 0, 512, 512))))

	d := NewImageDetector(imaging.NewDecoder())
	got := d.DetectFromFile(context.Background(), imaging.Source{Data: b.Bytes(), FileName: "photo.png"})

	// 25 resolution + 15 ratio + 15 metadata + 10 png + 15 bpp
	assert.Equal(t, 80, got.Confidence, "reasons: %q", got.Reasons)
	assert.True(t, got.IsAI)
}

func TestDetectFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    int
		isAI    bool
		reasons []string
	}{
		{
			url:     "https://cdn.openai.com/images/dalle-cat.png",
			want:    100,
			isAI:    true,
			reasons: []string{"Image hosted on known AI generation platform", "Filename suggests AI generation"},
		},
		{
			url:     "https://replicate.com/output/photo.jpg",
			want:    60,
			isAI:    true,
			reasons: []string{"Image hosted on known AI generation platform"},
		},
		{
			url:     "https://example.com/img/Generated-Art.PNG",
			want:    40,
			reasons: []string{"Filename suggests AI generation"},
		},
		{
			url:     "https://example.com/ai-images/holiday.jpg",
			want:    0,
			reasons: []string{reasonURLInconclusive},
		},
	}

	d := NewImageDetector(stubDecoder{})
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := d.DetectFromURL(tt.url)
			assert.Equal(t, tt.want, got.Confidence)
			assert.Equal(t, tt.isAI, got.IsAI)
			assert.Equal(t, tt.reasons, got.Reasons)
			assert.Equal(t, CategoryImage, got.Category)
		})
	}
}

func TestImageFileNameNotSerialized(t *testing.T) {
	d := NewImageDetector(stubDecoder{})
	got := d.Detect(ImageFeatures{Width: 10, Height: 10, FileSize: 100, FileName: "secret-name.png"})

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret-name")
	assert.Contains(t, string(out), `"image_analysis"`)
}
