package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func patternNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x * y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestEncodePNGBase64(t *testing.T) {
	img := patternNRGBA(16, 12)

	data, err := EncodePNGBase64(img)
	if err != nil {
		t.Fatalf("EncodePNGBase64 failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		t.Fatalf("result is not valid base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("result is not a valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 16 || decoded.Bounds().Dy() != 12 {
		t.Errorf("decoded dims: got %dx%d, want 16x12",
			decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(patternNRGBA(20, 10), path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 20 || decoded.Bounds().Dy() != 10 {
		t.Errorf("decoded dims: got %dx%d, want 20x10",
			decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestSavePNGBadPath(t *testing.T) {
	err := SavePNG(patternNRGBA(4, 4), filepath.Join(t.TempDir(), "missing", "out.png"))
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestSharpenPreservesDimensions(t *testing.T) {
	img := patternNRGBA(40, 30)

	out := Sharpen(img, 0.5)
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 30 {
		t.Errorf("dims: got %dx%d, want 40x30", out.Bounds().Dx(), out.Bounds().Dy())
	}

	// A non-positive amount uses the default rather than a no-op.
	out = Sharpen(img, 0)
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 30 {
		t.Errorf("default amount dims: got %dx%d, want 40x30",
			out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestResizeLanczos(t *testing.T) {
	tests := []struct {
		w, h         int
		scale        float64
		wantW, wantH int
	}{
		{100, 50, 2.0, 200, 100},
		{100, 50, 0.5, 50, 25},
		{33, 21, 1.5, 50, 32}, // 49.5 and 31.5 round half away from zero
	}
	for _, tt := range tests {
		out := ResizeLanczos(patternNRGBA(tt.w, tt.h), tt.scale)
		if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
			t.Errorf("%dx%d x%.1f: got %dx%d, want %dx%d",
				tt.w, tt.h, tt.scale,
				out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
		}
	}
}
