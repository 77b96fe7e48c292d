package flowkit

import (
	"context"
	"time"
)

// ActivityFunc is the shape of an activity body, a predicate's companion
// operation, or a SPLIT sub-context operation. It receives the parent
// action (the opaque value configured via Builder.WithAction, or nil) and
// the current context value, and returns the replacement context.
//
// A nil (value, nil) return retains the previous context, matching the
// source runtime's "absent value" rule. Returning a *Builder or *Pipeline
// is a tagged return: the Runner builds/executes it recursively on the
// current context instead of treating it as a plain replacement value (see
// the "dynamic return of a nested pipeline" design note).
type ActivityFunc func(ctx context.Context, parentAction any, value any) (any, error)

// PredicateFunc drives WHILE/UNTIL/IF/BREAK/CONTINUE. It is invoked with
// the parent action and the current context; its boolean result controls
// flow.
type PredicateFunc func(ctx context.Context, parentAction any, value any) (bool, error)

// SplitterFunc expands a context into an ordered list of sub-contexts for a SPLIT activity.
type SplitterFunc func(ctx context.Context, parentAction any, value any) ([]any, error)

// RejoinerFunc folds a SPLIT's settled sub-results, alongside the original
// context, into the replacement context. settled is always in
// splitter-produced order and always has one entry per sub-context,
// regardless of how many of them failed.
type RejoinerFunc func(ctx context.Context, parentAction any, original any, settled []Settlement) (any, error)

// TerminalFunc is the `done` finaliser. It receives the final context (or
// nil, if an activity failed) and the error that the run produced, if any.
// Its own return value becomes the run's final value; its own error
// aggregates with runErr via flowerrors.TerminalFailure.
type TerminalFunc func(ctx context.Context, parentAction any, value any, runErr error) (any, error)

// Settings configures a Pipeline's defaults for pool size and hook
// timeout, applied when a Runner or Piper is constructed without an
// explicit override. Grounded on the teacher's Settings.ApplyDefaults.
type Settings struct {
	PoolSize    int
	HookTimeout int64 // milliseconds; 0 means DefaultHookTimeoutMillis
}

// DefaultPoolSize is the worker-pool concurrency cap used when neither
// Settings nor a PoolOption specify one.
const DefaultPoolSize = 10

// DefaultHookTimeoutMillis is the hook dispatch timeout used when neither
// Settings nor the Runner's WithHookTimeout option specify one.
const DefaultHookTimeoutMillis = 1000

func (s Settings) poolSize() int {
	if s.PoolSize > 0 {
		return s.PoolSize
	}
	return DefaultPoolSize
}

func (s Settings) hookTimeout() time.Duration {
	if s.HookTimeout > 0 {
		return time.Duration(s.HookTimeout) * time.Millisecond
	}
	return DefaultHookTimeoutMillis * time.Millisecond
}
