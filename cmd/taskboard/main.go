package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abatilo/taskboard/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		a.printError(err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Task list and kanban board for a remote task service",
		Long:          "taskboard - list, board and analytics views over a task service, with drag-and-drop status changes.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.jsonOutput {
				a.formatter = output.NewJSONFormatter()
			} else {
				a.formatter = output.NewHumanFormatter()
			}
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.taskboard/config.yaml)")
	flags.StringVar(&a.profile, "profile", "", "Profile name (overrides config)")
	flags.StringVar(&a.backend, "backend", "", "Task backend: http or files (overrides config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		initCmd(a),
		addCmd(a),
		listCmd(a),
		boardCmd(a),
		showCmd(a),
		editCmd(a),
		rmCmd(a),
		moveCmd(a),
		dragCmd(a),
		viewCmd(a),
		openCmd(a),
		analyticsCmd(a),
	)
	return rootCmd
}

func (a *app) printOutput(s string) {
	_, _ = io.WriteString(a.out, s)
}

func (a *app) printError(err error) {
	if a.formatter == nil {
		a.formatter = output.NewHumanFormatter()
	}
	_, _ = io.WriteString(a.out, a.formatter.FormatError(err))
}
