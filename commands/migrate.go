package commands

import (
	"fanhub/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, database, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			color.Red("migration failed: %v", err)
			return err
		}
		color.Green("schema up to date")
		return nil
	},
}
