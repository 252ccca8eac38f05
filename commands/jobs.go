package commands

import (
	"fmt"

	"fanhub/workers"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and run background jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the jobs that can be run",
	Run: func(cmd *cobra.Command, args []string) {
		jobs := &workers.Jobs{}
		for _, name := range jobs.Names() {
			fmt.Println(name)
		}
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a job once and exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, database, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close()

		publisher := openPublisher(cfg, log)
		defer publisher.Close()

		jobs := &workers.Jobs{DB: database, Publisher: publisher, Logger: log}
		if err := jobs.Run(cmd.Context(), args[0]); err != nil {
			color.Red("job %s failed: %v", args[0], err)
			return err
		}
		color.Green("job %s done", args[0])
		return nil
	},
}

func init() {
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsRunCmd)
}
