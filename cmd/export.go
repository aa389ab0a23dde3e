package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quaverlabs/partita/diag"
	"github.com/quaverlabs/partita/midiexport"
	"github.com/quaverlabs/partita/scoreio"
)

var (
	exportTPQ    uint16
	exportStrict bool
)

func init() {
	exportCmd.Flags().Uint16Var(&exportTPQ, "tpq", 480, "ticks per quarter note")
	exportCmd.Flags().BoolVar(&exportStrict, "strict", false, "refuse to export a score with validation errors")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <score.yaml> <out.mid>",
	Short: "Exports a score to MIDI",
	Long:  `Expands repeats, schedules ticks and writes a standard MIDI file.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runExport(args[0], args[1])
	},
}

func runExport(scorePath, outPath string) {
	score, err := scoreio.ReadFile(scorePath)
	if err != nil {
		panic("Could not read score: " + err.Error())
	}
	scoreio.AssignPartIDs(score)

	opts := midiexport.Options{TicksPerQuarter: exportTPQ}
	if exportStrict {
		opts.Mode = midiexport.ValidateStrict
	} else {
		opts.Mode = midiexport.ValidateReport
		opts.OnDiagnostics = func(ds []diag.Diagnostic) {
			for _, d := range ds {
				fmt.Printf("%v\n", d)
			}
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		panic("Could not create output file: " + err.Error())
	}
	defer f.Close()

	if err := midiexport.Export(f, *score, opts); err != nil {
		fmt.Printf("export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %v\n", outPath)
}
