package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vocab/internal/extract"
	"vocab/internal/logger"
)

var convertCmd = &cobra.Command{
	Use:   "convert [yaml-file]",
	Short: "Convert a YAML entry list to the card CSV without any model call",
	Long: `Parse a YAML vocabulary list (from a file or stdin) and write it as an
Anki-importable CSV. The input tolerates code fences and surrounding
prose, the same way model replies are handled.

Expected entry shape:
  - word: magnificent
    back: 'extremely beautiful ("The view was magnificent")'
    tags: adjective`,
	Example: `  # From a file
  vocab convert extracted.yaml

  # From stdin
  cat extracted.yaml | vocab convert

  # Custom destination plus XLSX export
  vocab convert extracted.yaml -o deck.csv --xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("output", "o", "anki_cards.csv", "Output CSV path")
	convertCmd.Flags().Bool("xlsx", false, "Also write an XLSX export next to the CSV")
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("convert")

	var raw []byte
	var err error
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("cannot read input file: %w", err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("cannot read stdin: %w", err)
		}
	}

	cards, report, err := extract.Extract(string(raw))
	if err != nil {
		return err
	}
	if report.SkippedInvalid > 0 || report.SkippedDuplicate > 0 {
		log.Warn().
			Int("invalid", report.SkippedInvalid).
			Int("duplicate", report.SkippedDuplicate).
			Msg("Some items were dropped")
	}

	output, _ := cmd.Flags().GetString("output")
	absPath, err := extract.WriteCSV(cards, output)
	if err != nil {
		return err
	}

	if xlsx, _ := cmd.Flags().GetBool("xlsx"); xlsx {
		xlsxPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".xlsx"
		if _, err := extract.WriteXLSX(cards, xlsxPath); err != nil {
			log.Warn().Err(err).Str("path", xlsxPath).Msg("Could not write XLSX export")
		}
	}

	fmt.Printf("Wrote %d cards to %s\n", len(cards), absPath)
	return nil
}
