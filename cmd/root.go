package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soundwave/server"
)

var rootCmd = &cobra.Command{
	Use:   "soundwave",
	Short: "SoundWave is a media-library manager backend.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
