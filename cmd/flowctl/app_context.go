package main

import "github.com/rgalloway/flowkit/internal/xlog"

// AppContext carries the process-wide dependencies every subcommand needs,
// constructed once in main and threaded through newRootCmd.
type AppContext struct {
	Logger *xlog.Logger
}
