package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"soundwave/config"
	"soundwave/db"
	"soundwave/model"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Connect to the database and migrate the track, playlist and membership tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrateModels(
			&model.Track{},
			&model.Playlist{},
			&model.PlaylistTrack{},
		); err != nil {
			log.Fatalf("Failed to migrate models: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
