package preprocess

import (
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/transform"
)

// Format selects the encoding used by the compression stage and the
// processed-image export.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Resample selects the resampling kernel used by the resize stage.
type Resample string

const (
	ResampleLanczos  Resample = "lanczos"
	ResampleBicubic  Resample = "bicubic"
	ResampleBilinear Resample = "bilinear"
	ResampleNearest  Resample = "nearest"
)

// filter maps the kernel name onto a bild resample filter. Unknown names
// fall back to Lanczos, matching the default.
func (r Resample) filter() transform.ResampleFilter {
	switch r {
	case ResampleBicubic:
		return transform.CatmullRom
	case ResampleBilinear:
		return transform.Linear
	case ResampleNearest:
		return transform.NearestNeighbor
	default:
		return transform.Lanczos
	}
}

// Config holds user options for the image conditioning pipeline.
//
// Stage toggles are independent; the pipeline applies only the enabled
// stages, always in the fixed order resize, contrast, denoise, sharpen,
// compress.
type Config struct {
	// Master switch. When false the pipeline is a pass-through.
	Enabled bool

	// Stage toggles
	ResizeEnabled   bool
	ContrastEnabled bool
	DenoiseEnabled  bool
	SharpenEnabled  bool
	CompressEnabled bool

	// Resize settings. Images already within the bounds are never
	// upscaled.
	MaxWidth  int
	MaxHeight int
	Resample  Resample

	// Compression settings
	JPEGQuality      int // 1-100
	PNGCompressLevel int // 0-9, zlib style

	// Contrast enhancement. 1.0 = no change, >1.0 = more contrast.
	ContrastFactor float64

	// Noise reduction via Gaussian blur. 0 = no blur.
	DenoiseRadius float64

	// Sharpening (unsharp mask). 1.0 = no sharpening.
	SharpenFactor    float64
	SharpenThreshold int

	// Output format for compression measurement and final export
	OutputFormat Format

	// Debug settings
	SaveIntermediate bool   // dump every stage's output
	IntermediateDir  string // directory for intermediate dumps
	SaveProcessed    bool   // export the final image
	ProcessedDir     string // directory for final exports
}

// DefaultConfig returns the full pipeline with moderate settings.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		ResizeEnabled:    true,
		ContrastEnabled:  true,
		DenoiseEnabled:   true,
		SharpenEnabled:   true,
		CompressEnabled:  true,
		MaxWidth:         2048,
		MaxHeight:        2048,
		Resample:         ResampleLanczos,
		JPEGQuality:      85,
		PNGCompressLevel: 6,
		ContrastFactor:   1.2,
		DenoiseRadius:    0.5,
		SharpenFactor:    1.5,
		SharpenThreshold: 3,
		OutputFormat:     FormatPNG,
		IntermediateDir:  "output/preprocessing_debug",
		ProcessedDir:     "output/processed_images",
	}
}

// FastConfig trades fidelity for speed: resize and compress only.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.ContrastEnabled = false
	cfg.DenoiseEnabled = false
	cfg.SharpenEnabled = false
	cfg.MaxWidth = 1536
	cfg.MaxHeight = 1536
	cfg.JPEGQuality = 75
	cfg.OutputFormat = FormatJPEG
	return cfg
}

// QualityConfig keeps large dimensions with stronger enhancement.
func QualityConfig() Config {
	cfg := DefaultConfig()
	cfg.ContrastFactor = 1.3
	cfg.DenoiseRadius = 0.3
	cfg.SharpenFactor = 2.0
	cfg.OutputFormat = FormatJPEG
	cfg.JPEGQuality = 90
	return cfg
}

// BalancedConfig forces smaller dimensions with moderate enhancement and
// exports the final image by default.
func BalancedConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxWidth = 1024
	cfg.MaxHeight = 768
	cfg.ContrastFactor = 1.2
	cfg.DenoiseRadius = 0.2
	cfg.SharpenFactor = 1.3
	cfg.OutputFormat = FormatJPEG
	cfg.JPEGQuality = 85
	cfg.SaveProcessed = true
	return cfg
}

// OCRConfig is tuned for text legibility: small dimensions, high
// contrast, minimal blur.
func OCRConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxWidth = 800
	cfg.MaxHeight = 600
	cfg.ContrastFactor = 1.4
	cfg.DenoiseRadius = 0.1
	cfg.SharpenFactor = 1.5
	cfg.OutputFormat = FormatJPEG
	cfg.JPEGQuality = 80
	cfg.SaveProcessed = true
	return cfg
}

// DisabledConfig turns the whole pipeline off.
func DisabledConfig() Config {
	return Config{Enabled: false}
}

// PresetByName resolves a preset name as used in configuration and CLI
// flags.
func PresetByName(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultConfig(), nil
	case "fast":
		return FastConfig(), nil
	case "quality":
		return QualityConfig(), nil
	case "balanced":
		return BalancedConfig(), nil
	case "ocr":
		return OCRConfig(), nil
	case "off", "disabled", "none":
		return DisabledConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown preprocessing preset %q", name)
	}
}
