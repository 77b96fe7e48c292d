// Package flowkit is a reusable action pipeline runtime: ordered sequences
// of named activities that transform a shared context value, with
// structured control flow (conditionals, pre/post loops, parallel
// split/rejoin, non-local break/continue), pre/post hook dispatch keyed by
// activity name, and a concurrent worker pool for processing many seed
// contexts at once.
//
// A Builder accumulates activities and configuration; Build freezes it
// into an immutable Pipeline, which a Runner executes once per seed value
// or a Piper fans out across many seeds with bounded concurrency.
package flowkit
