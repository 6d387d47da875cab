// Package cli holds the laundry command tree.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/pkg/wizard"
)

// Opener builds the application for one command invocation
type Opener func(ctx context.Context) (*app.App, error)

// PrompterFactory creates the wizard's prompter writing to out
type PrompterFactory func(out io.Writer) wizard.Prompter

type commandContext struct {
	open     Opener
	prompter PrompterFactory
}

// NewRootCommand wires every subcommand to open and prompter
func NewRootCommand(open Opener, prompter PrompterFactory) *cobra.Command {
	c := &commandContext{open: open, prompter: prompter}

	root := &cobra.Command{
		Use:           "laundry",
		Short:         "Launder data between services on a schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCreateCommand(c),
		newEditCommand(c),
		newDestroyCommand(c),
		newRunCommand(c),
		newTickCommand(c),
		newListCommand(c),
	)
	return root
}

// withApp opens the application for the duration of fn
func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app.App) error) error {
	a, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
