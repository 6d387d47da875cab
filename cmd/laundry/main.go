package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/internal/cli"
	"github.com/iddaa-lens/laundry/internal/config"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/wizard"
)

func main() {
	// Logs go to stderr so they never interleave with prompts and reports
	logger.SetOutput(os.Stderr)
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg, app.Dependencies{})
	}
	prompter := func(out io.Writer) wizard.Prompter {
		return wizard.NewSurveyPrompter(out, survey.WithStdio(os.Stdin, os.Stdout, os.Stderr))
	}

	err := cli.NewRootCommand(open, prompter).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, wizard.ErrAborted):
		fmt.Fprintln(os.Stderr, "Aborted.")
		os.Exit(130)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
