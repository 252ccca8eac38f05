package commands

import (
	"log/slog"

	"fanhub/config"
	"fanhub/db"
	"fanhub/logger"

	"github.com/jinzhu/gorm"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fanhub",
	Short: "fanhub - fan engagement backend",
	Long: `fanhub serves the REST API behind the fan app: memberships, subscriptions,
news, tickets, shop, fantasy, loyalty and notifications.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the JSON config file (env FANHUB_* overrides)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(jobsCmd)
}

// bootstrap loads the configuration, builds the logger and opens the database.
func bootstrap() (config.Configuration, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Get(configPath)
	if err != nil {
		return config.Configuration{}, nil, nil, err
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	db.SetConfigurations(cfg)
	database, err := db.Connect(log)
	if err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, database, nil
}
