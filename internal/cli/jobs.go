package cli

import (
	"github.com/spf13/cobra"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/wizard"
)

func newCreateCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "create [job]",
		Short:   "Create a job, or edit it if it already exists",
		Example: "laundry create my-feed",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				p := c.prompter(cmd.OutOrStdout())
				name, err := jobName(p, args)
				if err != nil {
					return err
				}
				_, err = wizard.New(a.Scheduler, p, a.Logger).Run(cmd.Context(), name)
				return err
			})
		},
	}
}

func newEditCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "edit [job]",
		Short:   "Change an existing job",
		Example: "laundry edit my-feed",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				p := c.prompter(cmd.OutOrStdout())
				name, err := jobName(p, args)
				if err != nil {
					return err
				}
				if _, ok := a.Scheduler.Get(name); !ok {
					return &jobs.NotFoundError{Name: name}
				}
				_, err = wizard.New(a.Scheduler, p, a.Logger).Run(cmd.Context(), name)
				return err
			})
		},
	}
}

func newDestroyCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "destroy [job]",
		Short:   "Remove a job and the files it created",
		Example: "laundry destroy my-feed",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				p := c.prompter(cmd.OutOrStdout())
				name, err := jobName(p, args)
				if err != nil {
					return err
				}
				_, err = wizard.New(a.Scheduler, p, a.Logger).Destroy(cmd.Context(), name)
				return err
			})
		},
	}
}

// jobName takes the job from the arguments or asks for it
func jobName(p wizard.Prompter, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return p.Ask("What's the name of the job?", "")
}
