package cmd

import (
	"github.com/spf13/cobra"

	"soundwave/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the SoundWave HTTP server",
	Long:  `Start the SoundWave media-library HTTP server serving the track, playlist and upload APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
