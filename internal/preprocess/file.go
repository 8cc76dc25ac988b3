package preprocess

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Decoder registration for image.Decode. The conditioner itself
	// operates on decoded images; this covers the file-based entry point.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeFile decodes any raster file the registered decoders support
// (PNG, JPEG, GIF, BMP, WEBP, TIFF).
func DecodeFile(path string) (image.Image, error) {
	const op = "DecodeFile"

	f, err := os.Open(path)
	if err != nil {
		return nil, WrapConditionError(op, err, path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &ConditionError{Op: op, Err: ErrDecode, Details: fmt.Sprintf("%s: %v", path, err)}
	}

	return img, nil
}

// ConditionFile decodes the image at path, runs the conditioning
// pipeline and, when configured, exports the final image as
// <basename>_processed.<ext> under the processed directory.
func (c *Conditioner) ConditionFile(path string) (image.Image, *Summary, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}

	conditioned, summary, err := c.Condition(img)
	if err != nil {
		return nil, nil, err
	}

	if c.cfg.Enabled && c.cfg.SaveProcessed {
		if out, saveErr := c.saveProcessed(path, conditioned); saveErr != nil {
			// Export failure must not fail the conditioning call.
			c.log.Warn().Err(saveErr).Str("file", path).Msg("Could not save processed image")
		} else {
			summary.Steps = append(summary.Steps, fmt.Sprintf("saved to %s", out))
		}
	}

	return conditioned, summary, nil
}

// saveProcessed writes the final image next to its siblings in the
// processed directory, named after the input file.
func (c *Conditioner) saveProcessed(inputPath string, img image.Image) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	name := fmt.Sprintf("%s_processed.%s", base, c.cfg.OutputFormat)
	outPath := filepath.Join(c.cfg.ProcessedDir, name)

	encoded, err := Encode(img, c.cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, encoded, 0644); err != nil {
		return "", WrapConditionError("saveProcessed", err, outPath)
	}
	return outPath, nil
}

// saveIntermediate dumps a stage's output as a numbered PNG when
// intermediate saving is enabled. Failures are logged and ignored.
func (c *Conditioner) saveIntermediate(step int, name string, img image.Image) {
	if !c.cfg.SaveIntermediate {
		return
	}
	path := filepath.Join(c.cfg.IntermediateDir, fmt.Sprintf("%02d_%s.png", step, name))
	f, err := os.Create(path)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("Could not create intermediate dump")
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("Could not encode intermediate dump")
	}
}

// ensureDirs creates the debug/export directories on demand.
func (c *Conditioner) ensureDirs() error {
	if c.cfg.SaveIntermediate {
		if err := os.MkdirAll(c.cfg.IntermediateDir, 0755); err != nil {
			return WrapConditionError("New", err, c.cfg.IntermediateDir)
		}
	}
	if c.cfg.SaveProcessed {
		if err := os.MkdirAll(c.cfg.ProcessedDir, 0755); err != nil {
			return WrapConditionError("New", err, c.cfg.ProcessedDir)
		}
	}
	return nil
}
