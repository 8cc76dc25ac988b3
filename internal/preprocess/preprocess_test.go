package preprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestImage builds a gradient RGBA image so filters have structure to
// work with.
func newTestImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func newConditioner(t *testing.T, cfg Config) *Conditioner {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c
}

func TestConditionDisabled(t *testing.T) {
	c := newConditioner(t, DisabledConfig())
	img := newTestImage(100, 80)

	out, summary, err := c.Condition(img)
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	if out != image.Image(img) {
		t.Error("disabled pipeline should return the input image unchanged")
	}
	if !strings.Contains(summary.String(), "preprocessing disabled") {
		t.Errorf("unexpected summary: %q", summary.String())
	}
}

func TestResizeNoopWithinBounds(t *testing.T) {
	cfg := Config{Enabled: true, ResizeEnabled: true, MaxWidth: 2048, MaxHeight: 2048, Resample: ResampleLanczos}
	c := newConditioner(t, cfg)
	img := newTestImage(640, 480)

	out, summary, err := c.Condition(img)
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	bounds := out.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 480 {
		t.Errorf("dimensions changed: %dx%d", bounds.Dx(), bounds.Dy())
	}
	if len(summary.Steps) != 1 || !strings.Contains(summary.Steps[0], "no resize needed") {
		t.Errorf("unexpected steps: %v", summary.Steps)
	}
}

func TestResizePreservesAspectRatio(t *testing.T) {
	cfg := Config{Enabled: true, ResizeEnabled: true, MaxWidth: 2048, MaxHeight: 2048, Resample: ResampleLanczos}
	c := newConditioner(t, cfg)
	img := newTestImage(4000, 3000)

	out, _, err := c.Condition(img)
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	bounds := out.Bounds()
	if bounds.Dx() > 2048 || bounds.Dy() > 2048 {
		t.Errorf("image still exceeds bounds: %dx%d", bounds.Dx(), bounds.Dy())
	}

	oldRatio := 4000.0 / 3000.0
	newRatio := float64(bounds.Dx()) / float64(bounds.Dy())
	if math.Abs(oldRatio-newRatio) > 0.01 {
		t.Errorf("aspect ratio changed: %f -> %f", oldRatio, newRatio)
	}
}

func TestResizeUsesUniformFactor(t *testing.T) {
	// 4000x1000 against 800x600: the width is the binding constraint.
	cfg := Config{Enabled: true, ResizeEnabled: true, MaxWidth: 800, MaxHeight: 600, Resample: ResampleNearest}
	c := newConditioner(t, cfg)

	out, _, err := c.Condition(newTestImage(4000, 1000))
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	bounds := out.Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 200 {
		t.Errorf("expected 800x200, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestAllStagesDisabledIsIdentity(t *testing.T) {
	cfg := Config{Enabled: true}
	c := newConditioner(t, cfg)
	img := newTestImage(50, 50)

	out, summary, err := c.Condition(img)
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	if out != image.Image(img) {
		t.Error("no enabled stage should mean an untouched image")
	}
	if len(summary.Steps) != 0 {
		t.Errorf("expected no steps, got %v", summary.Steps)
	}
	if summary.FinalWidth != 50 || summary.FinalHeight != 50 {
		t.Errorf("unexpected final dimensions in summary: %+v", summary)
	}
}

func TestDenoiseSkippedAtZeroRadius(t *testing.T) {
	cfg := Config{Enabled: true, DenoiseEnabled: true, DenoiseRadius: 0}
	c := newConditioner(t, cfg)

	out, summary, err := c.Condition(newTestImage(40, 40))
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	if len(summary.Steps) != 1 || !strings.Contains(summary.Steps[0], "skipped") {
		t.Errorf("unexpected steps: %v", summary.Steps)
	}
	if out.Bounds().Dx() != 40 {
		t.Errorf("unexpected resize: %v", out.Bounds())
	}
}

func TestSharpenSkippedAtUnityFactor(t *testing.T) {
	cfg := Config{Enabled: true, SharpenEnabled: true, SharpenFactor: 1.0}
	c := newConditioner(t, cfg)

	_, summary, err := c.Condition(newTestImage(40, 40))
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	if len(summary.Steps) != 1 || !strings.Contains(summary.Steps[0], "skipped") {
		t.Errorf("unexpected steps: %v", summary.Steps)
	}
}

func TestCompressMeasuresButReturnsPixels(t *testing.T) {
	cfg := Config{Enabled: true, CompressEnabled: true, OutputFormat: FormatJPEG, JPEGQuality: 85}
	c := newConditioner(t, cfg)
	img := newTestImage(60, 60)

	out, summary, err := c.Condition(img)
	if err != nil {
		t.Fatalf("Condition returned error: %v", err)
	}
	// The stage reports the encoded size but never hands back a decoded
	// re-encode of the image.
	if out != image.Image(img) {
		t.Error("compression stage must return the pre-encoding pixel buffer")
	}
	if summary.CompressedSize == 0 {
		t.Error("expected a measured compressed size")
	}
	if len(summary.Steps) != 1 || !strings.Contains(summary.Steps[0], "JPEG compressed") {
		t.Errorf("unexpected steps: %v", summary.Steps)
	}
}

func TestEncodeJPEGFlattensAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	// fully transparent input
	encoded, err := Encode(img, Config{OutputFormat: FormatJPEG, JPEGQuality: 85})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("encoded JPEG is not decodable: %v", err)
	}
	// Transparent pixels must have been flattened onto white.
	r, g, b, _ := decoded.At(5, 5).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected near-white flattened pixel, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	img := newTestImage(20, 20)
	encoded, err := Encode(img, Config{OutputFormat: FormatPNG, PNGCompressLevel: 6})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("encoded PNG is not decodable: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds changed over a lossless round trip: %v", decoded.Bounds())
	}
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	_, err := Encode(newTestImage(4, 4), Config{OutputFormat: "bmp"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodeFileRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	if err := os.WriteFile(path, []byte("this is not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := DecodeFile(path)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	var condErr *ConditionError
	if !errors.As(err, &condErr) {
		t.Errorf("expected *ConditionError, got %T", err)
	}
}

func TestConditionFileSavesProcessedImage(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "vocab_page.png")
	writeTestPNG(t, inputPath, newTestImage(64, 64))

	cfg := Config{
		Enabled:         true,
		CompressEnabled: true,
		OutputFormat:    FormatJPEG,
		JPEGQuality:     80,
		SaveProcessed:   true,
		ProcessedDir:    filepath.Join(dir, "processed"),
	}
	c := newConditioner(t, cfg)

	_, summary, err := c.ConditionFile(inputPath)
	if err != nil {
		t.Fatalf("ConditionFile returned error: %v", err)
	}

	saved := filepath.Join(dir, "processed", "vocab_page_processed.jpeg")
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("expected processed export at %s: %v", saved, err)
	}
	if !strings.Contains(strings.Join(summary.Steps, "|"), "saved to") {
		t.Errorf("summary does not mention the export: %v", summary.Steps)
	}
}

func TestConditionFileSavesIntermediateSteps(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "page.png")
	writeTestPNG(t, inputPath, newTestImage(64, 64))

	cfg := Config{
		Enabled:          true,
		ResizeEnabled:    true,
		MaxWidth:         32,
		MaxHeight:        32,
		Resample:         ResampleBilinear,
		SaveIntermediate: true,
		IntermediateDir:  filepath.Join(dir, "debug"),
	}
	c := newConditioner(t, cfg)

	if _, _, err := c.ConditionFile(inputPath); err != nil {
		t.Fatalf("ConditionFile returned error: %v", err)
	}

	for _, name := range []string{"01_original.png", "02_resized.png"} {
		if _, err := os.Stat(filepath.Join(dir, "debug", name)); err != nil {
			t.Errorf("missing intermediate dump %s: %v", name, err)
		}
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		wantErr bool
	}{
		{"default", true, false},
		{"fast", true, false},
		{"quality", true, false},
		{"balanced", true, false},
		{"ocr", true, false},
		{"off", false, false},
		{"bogus", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := PresetByName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown preset")
				}
				return
			}
			if err != nil {
				t.Fatalf("PresetByName returned error: %v", err)
			}
			if cfg.Enabled != tt.enabled {
				t.Errorf("preset %s: Enabled=%v, want %v", tt.name, cfg.Enabled, tt.enabled)
			}
		})
	}
}

func TestUnsharpMaskThresholdPassThrough(t *testing.T) {
	// A uniform image has no edges: with any threshold above zero the
	// mask must leave every pixel untouched.
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	out := unsharpMask(img, 2.0, 50, 3)
	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			i := out.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				if out.Pix[i+c] != 128 {
					t.Fatalf("pixel (%d,%d) channel %d changed: %d", x, y, c, out.Pix[i+c])
				}
			}
		}
	}
}

func writeTestPNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
