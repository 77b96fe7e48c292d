package main

import (
	"fmt"

	"github.com/rgalloway/flowkit/internal/flowconfig"
	"github.com/rgalloway/flowkit/internal/hookload"
)

// ActivityRegisterer is the shape a compiled plugin loaded via --plugin must
// satisfy: given an empty ActivityRegistry, it registers every
// ActivityFunc/PredicateFunc/SplitterFunc/RejoinerFunc/TerminalFunc a
// document might reference by name. Loaded through internal/hookload's
// plugin.Open/Lookup convention, reused here rather than duplicated since
// both loaders resolve a (path, exportName) pair into a single Go value.
type ActivityRegisterer interface {
	RegisterActivities(*flowconfig.ActivityRegistry)
}

const activitiesExport = "Activities"

func loadActivityPlugins(paths []string, debug func(format string, args ...any)) (*flowconfig.ActivityRegistry, error) {
	reg := flowconfig.NewActivityRegistry()
	for _, path := range paths {
		source, err := hookload.Load(path, activitiesExport, debug)
		if err != nil {
			return nil, fmt.Errorf("loading activity plugin %s: %w", path, err)
		}
		registerer, ok := source.(ActivityRegisterer)
		if !ok {
			return nil, fmt.Errorf("activity plugin %s does not implement RegisterActivities", path)
		}
		registerer.RegisterActivities(reg)
	}
	return reg, nil
}
