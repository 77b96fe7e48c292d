package flowconfig

import (
	"fmt"
	"sync"

	"github.com/rgalloway/flowkit/pkg/flowerrors"
	"github.com/rgalloway/flowkit/pkg/flowkit"
)

func unknownRef(activity, ref string) error {
	return flowerrors.NewUnknownActivityRef(activity, ref)
}

// ActivityRegistry maps the names a Document references (uses, predicate,
// splitter, rejoiner, done) to the Go values a host program registers ahead
// of Resolve. A flowkit.ActivityFunc and a flowkit.PredicateFunc never share
// a namespace in the registry's callers, but the registry itself is shape
// agnostic: Resolve does the type assertion appropriate to the field it is
// filling in.
type ActivityRegistry struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewActivityRegistry returns an empty registry.
func NewActivityRegistry() *ActivityRegistry {
	return &ActivityRegistry{entries: make(map[string]any)}
}

// Register binds name to value, overwriting any prior binding. Host programs
// typically register every ActivityFunc/PredicateFunc/SplitterFunc/
// RejoinerFunc/TerminalFunc they own once at startup.
func (r *ActivityRegistry) Register(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = value
}

func (r *ActivityRegistry) lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

func (r *ActivityRegistry) activityFunc(activity, name string) (flowkit.ActivityFunc, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, unknownRef(activity, name)
	}
	fn, ok := v.(flowkit.ActivityFunc)
	if !ok {
		return nil, fmt.Errorf("flowconfig: %q registered under %q is not an ActivityFunc", name, activity)
	}
	return fn, nil
}

func (r *ActivityRegistry) predicateFunc(activity, name string) (flowkit.PredicateFunc, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, unknownRef(activity, name)
	}
	fn, ok := v.(flowkit.PredicateFunc)
	if !ok {
		return nil, fmt.Errorf("flowconfig: %q registered under %q is not a PredicateFunc", name, activity)
	}
	return fn, nil
}

func (r *ActivityRegistry) splitterFunc(activity, name string) (flowkit.SplitterFunc, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, unknownRef(activity, name)
	}
	fn, ok := v.(flowkit.SplitterFunc)
	if !ok {
		return nil, fmt.Errorf("flowconfig: %q registered under %q is not a SplitterFunc", name, activity)
	}
	return fn, nil
}

func (r *ActivityRegistry) rejoinerFunc(activity, name string) (flowkit.RejoinerFunc, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, unknownRef(activity, name)
	}
	fn, ok := v.(flowkit.RejoinerFunc)
	if !ok {
		return nil, fmt.Errorf("flowconfig: %q registered under %q is not a RejoinerFunc", name, activity)
	}
	return fn, nil
}

func (r *ActivityRegistry) terminalFunc(name string) (flowkit.TerminalFunc, error) {
	v, ok := r.lookup(name)
	if !ok {
		return nil, unknownRef("done", name)
	}
	fn, ok := v.(flowkit.TerminalFunc)
	if !ok {
		return nil, fmt.Errorf("flowconfig: %q registered under \"done\" is not a TerminalFunc", name)
	}
	return fn, nil
}
