package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/utils"
)

func newRunCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [job|all]",
		Short: "Run a job and every job chained after it",
		Long: `Run a job and every job scheduled to run after it. With "all", or
without an argument, every job that does not follow another job is run.`,
		Example: "laundry run my-feed",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := utils.ReservedJobName
			if len(args) > 0 {
				request = args[0]
			}
			return c.withApp(cmd, func(a *app.App) error {
				report, err := a.Scheduler.Run(cmd.Context(), request)
				return finish(cmd.OutOrStdout(), report, err)
			})
		},
	}
}

func newTickCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run every job that is due now",
		Long: `Run every job whose schedule says it is due, each followed by its
chain. Call this from cron, or use the laundry daemon instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				report, err := a.Scheduler.Tick(cmd.Context())
				return finish(cmd.OutOrStdout(), report, err)
			})
		},
	}
}

// finish prints the report and turns failed jobs into a non-zero exit
func finish(out io.Writer, report *jobs.Report, err error) error {
	if report != nil {
		printReport(out, report)
	}
	if err != nil || report == nil {
		return err
	}
	if failed := len(report.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(report.Results))
	}
	return nil
}

func printReport(out io.Writer, report *jobs.Report) {
	if len(report.Results) == 0 {
		fmt.Fprintln(out, "No jobs to run.")
		return
	}
	for _, result := range report.Results {
		if result.Err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", result.Job, result.Err)
			continue
		}
		fmt.Fprintf(out, "✓ %s: %d items in %s\n", result.Job, result.Items, result.Duration.Round(time.Millisecond))
	}
}
