package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vocab/internal/logger"
)

var batchCmd = &cobra.Command{
	Use:   "batch [image-directory]",
	Short: "Extract vocabulary from every unprocessed image in a directory",
	Long: `Process all images in a directory sequentially. Images recorded as
successfully converted in the ledger are skipped; previously failed or
unseen images are (re)tried. Per-image failures are recorded and the
batch continues with the next image.`,
	Example: `  # First run over a folder of vocabulary photos
  vocab batch ./input

  # Re-run after fixing credentials: only failures are retried
  vocab batch ./input --ledger .vocab_ledger.json

  # Larger timeout for a big folder, OCR preset
  vocab batch ./input --preset ocr --timeout 1800`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "", "Output CSV path (default: VOCAB_OUTPUT_CSV or anki_cards.csv)")
	batchCmd.Flags().String("ledger", "", "Ledger file path (default: VOCAB_LEDGER_PATH or .vocab_ledger.json)")
	batchCmd.Flags().String("preset", "", "Preprocessing preset: default, fast, quality, balanced, ocr, off")
	batchCmd.Flags().String("backend", "", "Vision backend: openai or googlevision")
	batchCmd.Flags().Bool("xlsx", false, "Also write an XLSX export next to the CSV")
	batchCmd.Flags().Int("timeout", 1800, "Total batch timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	p, err := buildPipeline(ctx, cmd, log)
	if err != nil {
		return err
	}

	result, err := p.ProcessBatch(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Batch complete: %d processed, %d skipped, %d failed\n",
		result.Processed, result.Skipped, result.Failed)
	fmt.Printf("Ledger: %d images total, %d successful, %d failed\n",
		result.Ledger.Total, result.Ledger.Successful, result.Ledger.Failed)
	return nil
}
