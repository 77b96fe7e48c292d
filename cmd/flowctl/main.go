package main

import (
	"fmt"
	"os"

	"github.com/rgalloway/flowkit/internal/xlog"
)

func main() {
	app := &AppContext{Logger: xlog.New(xlog.Options{Level: "info", Pretty: true})}

	rootCmd := newRootCmd(app)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
