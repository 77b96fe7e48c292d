package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgalloway/flowkit/pkg/flowkit"
)

type pipeOptions struct {
	ConfigPath string
	SeedsJSON  string
	PoolSize   int
}

func newPipeCmd(root *rootFlags, app *AppContext) *cobra.Command {
	opts := pipeOptions{}

	cmd := &cobra.Command{
		Use:   "pipe <document.yaml>",
		Short: "Fan a batch of seed values through a pipeline document with bounded concurrency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = args[0]
			return runPipe(cmd, root, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SeedsJSON, "seeds-json", "[]", "JSON array of seed values, one per pipeline run")
	cmd.Flags().IntVar(&opts.PoolSize, "pool", 0, "maximum concurrent runs; zero uses the document's configured default")

	return cmd
}

// settlementDTO mirrors flowkit.Settlement for JSON output: Reason is an
// error interface that marshals to an opaque struct on its own, so it is
// flattened to a string here.
type settlementDTO struct {
	Status string `json:"status"`
	Value  any    `json:"value,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func toSettlementDTOs(settled []flowkit.Settlement) []settlementDTO {
	out := make([]settlementDTO, len(settled))
	for i, s := range settled {
		dto := settlementDTO{Status: s.Status.String(), Value: s.Value}
		if s.Reason != nil {
			dto.Reason = s.Reason.Error()
		}
		out[i] = dto
	}
	return out
}

func runPipe(cmd *cobra.Command, root *rootFlags, app *AppContext, opts pipeOptions) error {
	p, err := buildRunnable(root, app, opts.ConfigPath)
	if err != nil {
		return err
	}

	var seeds []any
	if err := json.Unmarshal([]byte(opts.SeedsJSON), &seeds); err != nil {
		return fmt.Errorf("parsing --seeds-json: %w", err)
	}

	var poolOpts []flowkit.PoolOption
	poolOpts = append(poolOpts, flowkit.WithRunner(newRunnerFor(root, app)))
	if opts.PoolSize > 0 {
		poolOpts = append(poolOpts, flowkit.WithPoolSize(opts.PoolSize))
	}

	settled, err := flowkit.NewPiper(p, poolOpts...).Pipe(context.Background(), seeds)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(toSettlementDTOs(settled), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
