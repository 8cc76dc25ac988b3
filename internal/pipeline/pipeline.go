// Package pipeline wires the conditioning, vision, extraction and
// ledger stages into the image-to-flashcards flow.
//
// Processing is strictly sequential: one image is fully handled before
// the next begins. Per-image failures are recorded in the ledger and do
// not abort a batch; only resource-level failures do.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"vocab/internal/extract"
	"vocab/internal/ledger"
	"vocab/internal/logger"
	"vocab/internal/preprocess"
	"vocab/internal/vision"
	"vocab/pkg/models"
)

// imageExtensions are the input files a batch run picks up.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// Options carries the pipeline's collaborators and destinations. All
// paths are explicit constructor input so several pipelines can run in
// one process against different outputs.
type Options struct {
	Conditioner *preprocess.Conditioner
	Vision      vision.Service
	Ledger      *ledger.Ledger
	OutputCSV   string
	WriteXLSX   bool // additionally export an .xlsx next to the CSV
}

// Pipeline processes vocabulary images into the card table.
type Pipeline struct {
	opts Options
	log  zerolog.Logger
}

// New validates the collaborators and returns a ready pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Conditioner == nil {
		return nil, fmt.Errorf("pipeline: conditioner is required")
	}
	if opts.Vision == nil {
		return nil, fmt.Errorf("pipeline: vision service is required")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("pipeline: ledger is required")
	}
	if opts.OutputCSV == "" {
		return nil, fmt.Errorf("pipeline: output CSV path is required")
	}
	return &Pipeline{
		opts: opts,
		log:  logger.WithComponent("pipeline"),
	}, nil
}

// ItemResult summarizes one successfully processed image.
type ItemResult struct {
	Path       string
	OutputPath string
	Added      int // cards newly merged into the table
	Total      int // cards in the table after the merge
	Report     extract.Report
	Summary    *preprocess.Summary
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Processed int
	Skipped   int
	Failed    int
	Ledger    ledger.Stats
}

// ProcessImage runs one image end to end: condition, vision call,
// extraction, merge into the card table, ledger update. Every outcome,
// success or failure, is recorded in the ledger.
func (p *Pipeline) ProcessImage(ctx context.Context, path string) (*ItemResult, error) {
	log := p.log.With().Str("image", path).Logger()

	img, summary, err := p.opts.Conditioner.ConditionFile(path)
	if err != nil {
		p.opts.Ledger.Mark(path, false, err)
		return nil, err
	}
	log.Info().Str("summary", summary.String()).Msg("Image conditioned")

	raw, err := p.opts.Vision.ExtractText(ctx, img)
	if err != nil {
		p.opts.Ledger.Mark(path, false, err)
		return nil, err
	}

	cards, report, err := extract.Extract(raw)
	if err != nil {
		p.opts.Ledger.Mark(path, false, err)
		return nil, err
	}
	if report.SkippedInvalid > 0 || report.SkippedDuplicate > 0 {
		log.Warn().
			Int("invalid", report.SkippedInvalid).
			Int("duplicate", report.SkippedDuplicate).
			Msg("Some extracted items were dropped")
	}

	outputPath, total, added, err := p.merge(cards)
	if err != nil {
		p.opts.Ledger.Mark(path, false, err)
		return nil, err
	}

	p.opts.Ledger.Mark(path, true, nil)
	log.Info().
		Int("added", added).
		Int("total", total).
		Str("output", outputPath).
		Msg("Image processed")

	return &ItemResult{
		Path:       path,
		OutputPath: outputPath,
		Added:      added,
		Total:      total,
		Report:     report,
		Summary:    summary,
	}, nil
}

// ProcessBatch walks the directory and processes every unprocessed
// image in name order. Per-image failures are counted and the loop
// continues; an unreadable directory aborts the run.
func (p *Pipeline) ProcessBatch(ctx context.Context, dir string) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read input directory: %w", err)
	}

	result := &BatchResult{}
	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := filepath.Join(dir, entry.Name())
		if p.opts.Ledger.IsProcessed(path) {
			p.log.Debug().Str("image", path).Msg("Already processed, skipping")
			result.Skipped++
			continue
		}

		if _, err := p.ProcessImage(ctx, path); err != nil {
			// Recorded in the ledger; the batch moves on.
			p.log.Error().Err(err).Str("image", path).Msg("Image failed")
			result.Failed++
			continue
		}
		result.Processed++
	}

	result.Ledger = p.opts.Ledger.Stats()
	p.log.Info().
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Batch complete")
	return result, nil
}

// merge folds new cards into the existing table (read-modify-write,
// case-insensitive first-wins) and rewrites both export formats.
func (p *Pipeline) merge(cards []models.Card) (outputPath string, total, added int, err error) {
	existing, err := extract.ReadCSV(p.opts.OutputCSV)
	if err != nil {
		return "", 0, 0, err
	}

	merged, added := mergeCards(existing, cards)
	outputPath, err = extract.WriteCSV(merged, p.opts.OutputCSV)
	if err != nil {
		return "", 0, 0, err
	}

	if p.opts.WriteXLSX {
		xlsxPath := strings.TrimSuffix(p.opts.OutputCSV, filepath.Ext(p.opts.OutputCSV)) + ".xlsx"
		if _, xlsxErr := extract.WriteXLSX(merged, xlsxPath); xlsxErr != nil {
			// The CSV is the durable output; the workbook is a convenience.
			p.log.Warn().Err(xlsxErr).Str("path", xlsxPath).Msg("Could not write XLSX export")
		}
	}

	return outputPath, len(merged), added, nil
}

// mergeCards appends new cards to the existing set, keeping the first
// occurrence of each word (case-insensitive).
func mergeCards(existing, incoming []models.Card) ([]models.Card, int) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]models.Card, 0, len(existing)+len(incoming))
	for _, card := range existing {
		key := strings.ToLower(card.Word)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, card)
	}

	added := 0
	for _, card := range incoming {
		key := strings.ToLower(card.Word)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, card)
		added++
	}
	return merged, added
}
