package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return b.Bytes()
}

func TestDecodePNG(t *testing.T) {
	data := encodePNG(t, 64, 48)
	got, err := NewDecoder().Decode(context.Background(), Source{Data: data, FileName: "cat.png"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Width != 64 || got.Height != 48 {
		t.Fatalf("dimensions = %dx%d, want 64x48", got.Width, got.Height)
	}
	if got.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", got.MIMEType)
	}
	if got.Format != "png" {
		t.Errorf("Format = %q, want png", got.Format)
	}
	if len(got.Metadata) != 2 {
		t.Errorf("expected type and name metadata only, got %v", got.Metadata)
	}
}

func TestDecodeLastModified(t *testing.T) {
	data := encodePNG(t, 8, 8)
	mod := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := NewDecoder().Decode(context.Background(), Source{Data: data, FileName: "a.png", LastModified: mod})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Metadata["lastModified"] != mod.UnixMilli() {
		t.Errorf("lastModified = %v, want %d", got.Metadata["lastModified"], mod.UnixMilli())
	}
}

func TestDecodeRejectsNonImage(t *testing.T) {
	_, err := NewDecoder().Decode(context.Background(), Source{Data: []byte("just some plain text"), FileName: "notes.txt"})
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestDecodeTruncatedImage(t *testing.T) {
	data := encodePNG(t, 16, 16)
	_, err := NewDecoder().Decode(context.Background(), Source{Data: data[:12], FileName: "broken.png"})
	if err == nil {
		t.Fatal("expected error for truncated png")
	}
}

func TestDecodeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDecoder().Decode(ctx, Source{Data: encodePNG(t, 8, 8)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSniffMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", encodePNG(t, 2, 2), "image/png"},
		{"jpeg magic", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, "image/jpeg"},
		{"text", []byte("hello world"), "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffMIME(tt.data); got != tt.want {
				t.Errorf("SniffMIME() = %q, want %q", got, tt.want)
			}
		})
	}
}
