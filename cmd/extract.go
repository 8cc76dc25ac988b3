package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vocab/internal/config"
	"vocab/internal/ledger"
	"vocab/internal/logger"
	"vocab/internal/pipeline"
	"vocab/internal/preprocess"
	"vocab/internal/vision"
)

var extractCmd = &cobra.Command{
	Use:   "extract [image-file]",
	Short: "Extract vocabulary from a single image into the card CSV",
	Long: `Condition the image, send it to the configured vision backend, recover
the vocabulary entries from the reply and merge them into the card CSV.

The outcome is recorded in the processing ledger, so a later batch run
over the same directory will not repeat the work.

Backend configuration comes from the environment:
  OPENAI_API_KEY / OPENAI_BASE_URL / VISION_MODEL  for the openai backend
  GOOGLE_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS for googlevision`,
	Example: `  # Extract using defaults (openai backend, anki_cards.csv)
  vocab extract page1.png

  # Against a local Ollama server
  OPENAI_BASE_URL=http://127.0.0.1:11434/v1 VISION_MODEL=qwen2.5vl vocab extract page1.png

  # OCR-tuned preprocessing, custom output, extra XLSX export
  vocab extract page1.png --preset ocr -o deck.csv --xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output CSV path (default: VOCAB_OUTPUT_CSV or anki_cards.csv)")
	extractCmd.Flags().String("ledger", "", "Ledger file path (default: VOCAB_LEDGER_PATH or .vocab_ledger.json)")
	extractCmd.Flags().String("preset", "", "Preprocessing preset: default, fast, quality, balanced, ocr, off")
	extractCmd.Flags().String("backend", "", "Vision backend: openai or googlevision")
	extractCmd.Flags().Bool("xlsx", false, "Also write an XLSX export next to the CSV")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	imagePath := args[0]
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("cannot access image file: %w", err)
	}

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	p, err := buildPipeline(ctx, cmd, log)
	if err != nil {
		return err
	}

	result, err := p.ProcessImage(ctx, imagePath)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d new cards (%d total) to %s\n", result.Added, result.Total, result.OutputPath)
	if result.Report.SkippedInvalid > 0 || result.Report.SkippedDuplicate > 0 {
		fmt.Printf("Skipped %d invalid and %d duplicate items\n",
			result.Report.SkippedInvalid, result.Report.SkippedDuplicate)
	}
	return nil
}

// buildPipeline assembles the conditioner, vision backend, ledger and
// output destinations from environment config plus command flags.
func buildPipeline(ctx context.Context, cmd *cobra.Command, log zerolog.Logger) (*pipeline.Pipeline, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}

	presetCfg, err := preprocess.PresetByName(cfg.PreprocessPreset)
	if err != nil {
		return nil, err
	}
	conditioner, err := preprocess.New(presetCfg)
	if err != nil {
		return nil, err
	}

	visionService, err := buildVisionService(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	xlsx, _ := cmd.Flags().GetBool("xlsx")

	return pipeline.New(pipeline.Options{
		Conditioner: conditioner,
		Vision:      visionService,
		Ledger:      ledger.Open(cfg.LedgerPath),
		OutputCSV:   cfg.OutputCSV,
		WriteXLSX:   xlsx,
	})
}

// effectiveConfig loads the environment config and overlays command
// flags on top.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		os.Setenv("VISION_BACKEND", backend)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.OutputCSV = output
	}
	if ledgerPath, _ := cmd.Flags().GetString("ledger"); ledgerPath != "" {
		cfg.LedgerPath = ledgerPath
	}
	if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
		cfg.PreprocessPreset = preset
	}
	return cfg, nil
}

// buildVisionService creates the configured backend.
func buildVisionService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (vision.Service, error) {
	switch cfg.VisionBackend {
	case config.BackendGoogleVision:
		log.Info().Msg("Using Google Cloud Vision backend")
		return vision.NewGoogleVisionService(ctx)
	default:
		log.Info().
			Str("model", cfg.VisionModel).
			Str("base_url", cfg.OpenAIBaseURL).
			Msg("Using OpenAI-compatible chat backend")
		return vision.NewOpenAIService(vision.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.VisionModel,
		})
	}
}

// createContextWithTimeout returns a context that expires after the
// timeout and is canceled on SIGINT/SIGTERM.
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("Received signal, canceling")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
