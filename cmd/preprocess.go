package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vocab/internal/preprocess"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [image-file]",
	Short: "Run only the image conditioning pipeline",
	Long: `Condition an image exactly as the extract command would, without
calling any vision backend. Useful for tuning presets: the processed
image and optional per-stage dumps can be inspected on disk.`,
	Example: `  # Condition with the OCR preset and save the result
  vocab preprocess page1.png --preset ocr --out-dir ./processed

  # Dump every intermediate stage for inspection
  vocab preprocess page1.png --save-steps --steps-dir ./debug`,
	Args: cobra.ExactArgs(1),
	RunE: runPreprocess,
}

func init() {
	rootCmd.AddCommand(preprocessCmd)

	preprocessCmd.Flags().String("preset", "default", "Preprocessing preset: default, fast, quality, balanced, ocr, off")
	preprocessCmd.Flags().String("out-dir", "", "Save the processed image into this directory")
	preprocessCmd.Flags().Bool("save-steps", false, "Save every intermediate stage image")
	preprocessCmd.Flags().String("steps-dir", "output/preprocessing_debug", "Directory for intermediate stage dumps")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	preset, _ := cmd.Flags().GetString("preset")
	cfg, err := preprocess.PresetByName(preset)
	if err != nil {
		return err
	}

	if outDir, _ := cmd.Flags().GetString("out-dir"); outDir != "" {
		cfg.SaveProcessed = true
		cfg.ProcessedDir = outDir
	}
	if saveSteps, _ := cmd.Flags().GetBool("save-steps"); saveSteps {
		cfg.SaveIntermediate = true
		if stepsDir, _ := cmd.Flags().GetString("steps-dir"); stepsDir != "" {
			cfg.IntermediateDir = stepsDir
		}
	}

	conditioner, err := preprocess.New(cfg)
	if err != nil {
		return err
	}

	_, summary, err := conditioner.ConditionFile(args[0])
	if err != nil {
		return err
	}

	fmt.Println(summary.String())
	return nil
}
