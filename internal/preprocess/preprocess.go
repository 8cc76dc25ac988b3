// Package preprocess conditions vocabulary-list images for legibility
// before they are handed to a vision model.
//
// The pipeline is deterministic and purely local: resize, contrast
// enhancement, noise reduction, sharpening and a compression pass, each
// individually toggleable and applied in that fixed order. Conditioning
// is best-effort: a failing stage falls back to its input image instead
// of aborting the pipeline.
package preprocess

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/rs/zerolog"

	"vocab/internal/logger"
)

// unsharpRadius is the fixed spatial radius of the sharpening mask.
const unsharpRadius = 2.0

// Summary is an ordered human-readable record of which stages ran and
// their effective parameters.
type Summary struct {
	Disabled       bool
	OriginalWidth  int
	OriginalHeight int
	FinalWidth     int
	FinalHeight    int
	CompressedSize int // bytes after the compression stage's encode, 0 if it did not run
	Steps          []string
}

// String renders the summary in a single log-friendly line.
func (s *Summary) String() string {
	if s.Disabled {
		return "preprocessing disabled - using original image"
	}
	return fmt.Sprintf("Processed %dx%d -> %dx%d: %s",
		s.OriginalWidth, s.OriginalHeight, s.FinalWidth, s.FinalHeight,
		strings.Join(s.Steps, " | "))
}

// Conditioner applies the configured conditioning pipeline to images.
type Conditioner struct {
	cfg Config
	log zerolog.Logger
}

// New creates a Conditioner and prepares its debug/export directories.
// Directory creation failures are resource-level and therefore fatal.
func New(cfg Config) (*Conditioner, error) {
	c := &Conditioner{
		cfg: cfg,
		log: logger.WithComponent("preprocess"),
	}
	if err := c.ensureDirs(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the conditioner's configuration.
func (c *Conditioner) Config() Config {
	return c.cfg
}

// Condition applies the enabled stages in fixed order and returns the
// conditioned image together with a step-by-step summary.
//
// A failing stage is logged and its input image carried forward; the
// error is never surfaced to the caller because conditioning is
// best-effort by contract.
func (c *Conditioner) Condition(img image.Image) (image.Image, *Summary, error) {
	if !c.cfg.Enabled {
		return img, &Summary{Disabled: true}, nil
	}

	bounds := img.Bounds()
	summary := &Summary{
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
	}

	c.saveIntermediate(1, "original", img)

	stages := []struct {
		name    string
		enabled bool
		run     func(image.Image, *Summary) (image.Image, string, error)
	}{
		{"resized", c.cfg.ResizeEnabled, c.resize},
		{"contrast", c.cfg.ContrastEnabled, c.contrast},
		{"denoised", c.cfg.DenoiseEnabled, c.denoise},
		{"sharpened", c.cfg.SharpenEnabled, c.sharpen},
		{"compressed", c.cfg.CompressEnabled, c.compress},
	}

	step := 2
	for _, stage := range stages {
		if !stage.enabled {
			continue
		}
		out, note, err := stage.run(img, summary)
		if err != nil {
			// Best-effort: keep the pre-stage image and move on.
			c.log.Warn().Err(err).Str("stage", stage.name).
				Msg("Conditioning stage failed, keeping previous image")
			note = fmt.Sprintf("%s stage failed, skipped (%v)", stage.name, err)
			out = img
		}
		img = out
		summary.Steps = append(summary.Steps, note)
		c.saveIntermediate(step, stage.name, img)
		step++
	}

	final := img.Bounds()
	summary.FinalWidth = final.Dx()
	summary.FinalHeight = final.Dy()

	c.log.Debug().
		Int("width", summary.FinalWidth).
		Int("height", summary.FinalHeight).
		Msg("Conditioning complete")

	return img, summary, nil
}

// resize scales the image down to fit MaxWidth x MaxHeight while
// preserving the aspect ratio. Images already within bounds pass
// through untouched; the pipeline never upscales.
func (c *Conditioner) resize(img image.Image, _ *Summary) (image.Image, string, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	maxW, maxH := c.cfg.MaxWidth, c.cfg.MaxHeight

	if maxW <= 0 || maxH <= 0 {
		return img, "", &ConditionError{Op: "resize", Err: fmt.Errorf("invalid max dimensions %dx%d", maxW, maxH)}
	}
	if width <= maxW && height <= maxH {
		return img, fmt.Sprintf("no resize needed (%dx%d)", width, height), nil
	}

	ratio := math.Min(float64(maxW)/float64(width), float64(maxH)/float64(height))
	newW := int(float64(width) * ratio)
	newH := int(float64(height) * ratio)

	resized := transform.Resize(img, newW, newH, c.cfg.Resample.filter())
	return resized, fmt.Sprintf("resized %dx%d -> %dx%d (%s)", width, height, newW, newH, c.cfg.Resample), nil
}

// contrast remaps pixel contrast by the configured factor.
func (c *Conditioner) contrast(img image.Image, _ *Summary) (image.Image, string, error) {
	enhanced := adjust.Contrast(img, c.cfg.ContrastFactor-1.0)
	return enhanced, fmt.Sprintf("contrast enhanced (factor: %g)", c.cfg.ContrastFactor), nil
}

// denoise applies a Gaussian blur with the configured radius. A radius
// of zero or below is a documented no-op.
func (c *Conditioner) denoise(img image.Image, _ *Summary) (image.Image, string, error) {
	if c.cfg.DenoiseRadius <= 0 {
		return img, "noise reduction skipped (radius: 0)", nil
	}
	denoised := blur.Gaussian(img, c.cfg.DenoiseRadius)
	return denoised, fmt.Sprintf("noise reduced (radius: %g)", c.cfg.DenoiseRadius), nil
}

// sharpen applies an unsharp mask with the fixed spatial radius, a
// strength derived from the sharpen factor and the configured
// minimum-difference threshold. A factor at or below 1.0 is a no-op.
func (c *Conditioner) sharpen(img image.Image, _ *Summary) (image.Image, string, error) {
	if c.cfg.SharpenFactor <= 1.0 {
		return img, "sharpening skipped (factor: 1.0)", nil
	}
	percent := int((c.cfg.SharpenFactor - 1.0) * 100)
	sharpened := unsharpMask(img, unsharpRadius, percent, c.cfg.SharpenThreshold)
	return sharpened, fmt.Sprintf("sharpened (factor: %g)", c.cfg.SharpenFactor), nil
}

// compress re-encodes the image to measure its byte size at the
// configured format and quality. The encoded bytes exist for size
// reporting and export only: the stage always returns the pre-encoding
// pixel buffer, never a decode of its own output.
func (c *Conditioner) compress(img image.Image, summary *Summary) (image.Image, string, error) {
	encoded, err := Encode(img, c.cfg)
	if err != nil {
		return img, "", err
	}
	summary.CompressedSize = len(encoded)
	switch c.cfg.OutputFormat {
	case FormatJPEG:
		return img, fmt.Sprintf("JPEG compressed (quality: %d, size: %d bytes)", c.cfg.JPEGQuality, len(encoded)), nil
	default:
		return img, fmt.Sprintf("PNG compressed (level: %d, size: %d bytes)", c.cfg.PNGCompressLevel, len(encoded)), nil
	}
}

// unsharpMask sharpens by amplifying the difference between the image
// and its Gaussian blur. Differences below the threshold are left
// untouched so flat regions do not pick up noise.
func unsharpMask(img image.Image, radius float64, percent, threshold int) *image.RGBA {
	src := clone.AsRGBA(img)
	blurred := blur.Gaussian(src, radius)

	out := image.NewRGBA(src.Bounds())
	amount := float64(percent) / 100.0

	for i := 0; i < len(src.Pix); i++ {
		if i%4 == 3 { // alpha channel passes through
			out.Pix[i] = src.Pix[i]
			continue
		}
		diff := int(src.Pix[i]) - int(blurred.Pix[i])
		if abs(diff) < threshold {
			out.Pix[i] = src.Pix[i]
			continue
		}
		v := int(src.Pix[i]) + int(math.Round(amount*float64(diff)))
		out.Pix[i] = clampUint8(v)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampUint8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
