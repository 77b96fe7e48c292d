package flowkit

import (
	"time"

	"github.com/rgalloway/flowkit/hooks"
	"github.com/rgalloway/flowkit/internal/xlog"
)

// RunnerOption configures a Runner at construction time.
type RunnerOption func(*Runner)

// WithHookTimeout overrides the default 1,000ms hook-dispatch timeout for every Pipeline this Runner executes.
func WithHookTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.hookTimeout = d }
}

// WithLogger attaches a logger the Runner and the Dispatchers it builds use for diagnostics.
func WithLogger(l *xlog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// PoolOption configures a Piper at construction time.
type PoolOption func(*Piper)

// WithPoolSize overrides the default concurrency cap of 10.
func WithPoolSize(n int) PoolOption {
	return func(p *Piper) {
		if n > 0 {
			p.poolSize = n
		}
	}
}

// WithRunner supplies a pre-configured Runner for a Piper to use, instead of one built from default options.
func WithRunner(r *Runner) PoolOption {
	return func(p *Piper) { p.runner = r }
}

// dispatcherOptions resolves the hooks.Option set for p's Dispatcher,
// built once at p's first dispatch and cached for its lifetime (see
// Pipeline.dispatcher). An explicit WithHookTimeout on this Runner wins,
// matching WithPoolSize's precedence over Settings in NewPiper; otherwise
// p's own resolved document settings (hook_timeout_ms) apply, falling back
// to DefaultHookTimeoutMillis.
func (r *Runner) dispatcherOptions(p *Pipeline) []hooks.Option {
	timeout := p.settings.hookTimeout()
	if r.hookTimeout > 0 {
		timeout = r.hookTimeout
	}
	opts := []hooks.Option{hooks.WithTimeout(timeout)}
	if r.logger != nil {
		opts = append(opts, hooks.WithLogger(r.logger))
	}
	return opts
}
