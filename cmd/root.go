package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vocab/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "vocab",
	Short: "vocab - turn vocabulary list images into Anki flashcards",
	Long: `vocab extracts vocabulary entries (word, definition, examples, part of
speech) from images of vocabulary lists using a vision-capable language
model, and writes them as an Anki-importable CSV.

Images are conditioned locally (resize, contrast, denoise, sharpen)
before being sent to the model, and a processing ledger keeps batch
runs idempotent: already-converted images are skipped, failed ones are
retried.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vocab - vocabulary image to flashcard converter")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
