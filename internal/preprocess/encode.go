package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
)

// Encode serializes the image per the configured output format.
//
// JPEG has no alpha channel, so transparent or palette images are
// flattened onto an opaque white background first. PNG keeps the pixel
// data as-is and maps the configured compress level onto the stdlib
// compression levels.
func Encode(img image.Image, cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	switch cfg.OutputFormat {
	case FormatJPEG:
		quality := cfg.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&buf, flattenOpaque(img), &jpeg.Options{Quality: quality}); err != nil {
			return nil, WrapConditionError("Encode", err, "jpeg")
		}
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: pngLevel(cfg.PNGCompressLevel)}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, WrapConditionError("Encode", err, "png")
		}
	default:
		return nil, WrapConditionError("Encode", ErrUnsupportedFormat, string(cfg.OutputFormat))
	}
	return buf.Bytes(), nil
}

// flattenOpaque composites the image over an opaque white background.
// Images that are already fully opaque are returned unchanged.
func flattenOpaque(img image.Image) image.Image {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok && o.Opaque() {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}

// pngLevel maps a zlib-style 0-9 level onto the stdlib's coarse levels.
func pngLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
