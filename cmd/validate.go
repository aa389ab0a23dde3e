package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quaverlabs/partita/scoreio"
	"github.com/quaverlabs/partita/validate"
)

var (
	validateFullness  bool
	validateTolerance float64
)

func init() {
	validateCmd.Flags().BoolVar(&validateFullness, "fullness", false, "also run the per-voice fullness check")
	validateCmd.Flags().Float64Var(&validateTolerance, "tolerance", 0, "measure duration tolerance in quarter notes")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <score.yaml>",
	Short: "Validates a score file",
	Long:  `Validates a score file and prints every diagnostic found.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runValidate(args[0])
	},
}

func runValidate(path string) {
	score, err := scoreio.ReadFile(path)
	if err != nil {
		panic("Could not read score: " + err.Error())
	}

	opts := validate.DefaultOptions()
	opts.MeasureFullness = validateFullness
	opts.DurationTolerance = validateTolerance

	res := validate.Validate(*score, opts)
	for _, d := range res.Errors {
		fmt.Printf("%v\n", d)
	}
	for _, d := range res.Warnings {
		fmt.Printf("%v\n", d)
	}
	if !res.Valid {
		fmt.Printf("invalid: %v error(s), %v warning(s)\n", len(res.Errors), len(res.Warnings))
		os.Exit(1)
	}
	fmt.Printf("valid: %v warning(s)\n", len(res.Warnings))
}
