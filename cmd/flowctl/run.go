package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgalloway/flowkit/internal/flowconfig"
	"github.com/rgalloway/flowkit/pkg/flowkit"
)

type runOptions struct {
	ConfigPath string
	SeedJSON   string
	Timeout    time.Duration
}

func newRunCmd(root *rootFlags, app *AppContext) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run <document.yaml>",
		Short: "Run a pipeline document once against a single seed value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = args[0]
			return runOnce(cmd, root, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SeedJSON, "seed-json", "null", "JSON value used as the run's initial context")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "overall run timeout; zero means no deadline")

	return cmd
}

func buildBuilder(root *rootFlags, app *AppContext, configPath string) (*flowkit.Builder, error) {
	doc, err := flowconfig.Parse(configPath)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	debug := func(format string, args ...any) {
		app.Logger.Debug(fmt.Sprintf(format, args...), nil)
	}

	reg, err := loadActivityPlugins(root.plugins, debug)
	if err != nil {
		return nil, err
	}

	builder, err := flowconfig.Resolve(doc, reg)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", configPath, err)
	}
	return builder, nil
}

func buildRunnable(root *rootFlags, app *AppContext, configPath string) (*flowkit.Pipeline, error) {
	builder, err := buildBuilder(root, app, configPath)
	if err != nil {
		return nil, err
	}
	p, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", configPath, err)
	}
	return p, nil
}

func newRunnerFor(root *rootFlags, app *AppContext) *flowkit.Runner {
	var opts []flowkit.RunnerOption
	opts = append(opts, flowkit.WithLogger(app.Logger))
	return flowkit.NewRunner(opts...)
}

func runOnce(cmd *cobra.Command, root *rootFlags, app *AppContext, opts runOptions) error {
	p, err := buildRunnable(root, app, opts.ConfigPath)
	if err != nil {
		return err
	}

	var seed any
	if err := json.Unmarshal([]byte(opts.SeedJSON), &seed); err != nil {
		return fmt.Errorf("parsing --seed-json: %w", err)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	result, runErr := newRunnerFor(root, app).Run(ctx, p, seed)
	if runErr != nil {
		return runErr
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", result)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
