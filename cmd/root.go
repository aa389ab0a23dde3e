package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "partita",
	Short: "Music notation toolkit",
	Long:  `Validates score documents and exports them to MIDI.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
