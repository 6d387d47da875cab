package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/pkg/models"
)

func newListCommand(c *commandContext) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every job and when it runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				all := a.Scheduler.Jobs()
				if plain || len(all) == 0 {
					fmt.Fprint(cmd.OutOrStdout(), a.Scheduler.Describe())
					if len(all) == 0 {
						fmt.Fprintln(cmd.OutOrStdout())
					}
					return nil
				}
				renderJobs(cmd.OutOrStdout(), all)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print one line per job instead of a table")
	return cmd
}

func renderJobs(out io.Writer, all []*models.Job) {
	table := tablewriter.NewWriter(out)
	table.SetBorder(false)
	table.SetHeader([]string{"Name", "Input", "Output", "Schedule", "Last run"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, job := range all {
		lastRun := "never"
		if job.LastRun != nil {
			lastRun = job.LastRun.Local().Format(time.RFC3339)
		}
		table.Append([]string{
			job.Name,
			connectorType(job.Input),
			connectorType(job.Output),
			job.Schedule.Describe(),
			lastRun,
		})
	}
	table.Render()
}

func connectorType(instance *models.ConnectorInstance) string {
	if instance == nil {
		return "-"
	}
	return instance.Type
}
