package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rgalloway/flowkit/cmd/flowctl/watchui"
	"github.com/rgalloway/flowkit/pkg/flowkit"
)

type watchOptions struct {
	ConfigPath string
	SeedJSON   string
}

func newWatchCmd(root *rootFlags, app *AppContext) *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <document.yaml>",
		Short: "Run a pipeline document once with a live dashboard of activity progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = args[0]
			return runWatch(cmd, root, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SeedJSON, "seed-json", "null", "JSON value used as the run's initial context")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootFlags, app *AppContext, opts watchOptions) error {
	builder, err := buildBuilder(root, app, opts.ConfigPath)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	model := watchui.NewModel(opts.ConfigPath, builder.ActivityCount())

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	var observer flowkit.Observer = flowkit.ObserverFunc(func(_ context.Context, evt flowkit.Event) {
		dispatchWatchMsg(interactive, program, &model, watchui.EventMsg{Event: evt})
	})
	builder.WithObserver(observer)

	p, err := builder.Build()
	if err != nil {
		return err
	}

	if interactive {
		program = tea.NewProgram(model)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	var seed any
	if err := json.Unmarshal([]byte(opts.SeedJSON), &seed); err != nil {
		return fmt.Errorf("parsing --seed-json: %w", err)
	}

	result, runErr := newRunnerFor(root, app).Run(context.Background(), p, seed)
	dispatchWatchMsg(interactive, program, &model, watchui.DoneMsg{Err: runErr})

	if interactive {
		program.Send(tea.QuitMsg{})
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), model.View())
	}

	if runErr != nil {
		return runErr
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}

func dispatchWatchMsg(interactive bool, program *tea.Program, model *watchui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}
	updated, _ := model.Update(msg)
	if m, ok := updated.(watchui.Model); ok {
		*model = m
	}
}
