package cmd

import (
	"github.com/spf13/cobra"

	"mazzeh-api/config"
	"mazzeh-api/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		log := logger.NewLogger(cfg.Log.Level, &logger.MainLogHook{})

		db, err := config.InitDB(cfg.Database)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		log.Infof("schema migrated (%s)", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
