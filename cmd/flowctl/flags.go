package main

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose bool
	plugins []string
}
