// Package hooks implements name-mangled hook dispatch for the flowkit
// runtime: given a user-supplied hook source, it looks up methods named
// Before$X / After$X for an activity X (see mangle.go for the exact Go
// rendering of that convention), plus the unprefixed Setup and Cleanup
// lifecycle methods, and invokes whichever is present with a bounded
// timeout.
package hooks

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/rgalloway/flowkit/internal/xlog"
)

// DefaultTimeout is the wall-clock budget given to a single hook
// invocation when the Dispatcher is not configured with one explicitly.
const DefaultTimeout = 1000 * time.Millisecond

// BeforeHook is the method shape a hook source must expose under
// "Before"+CamelName(activity) to observe an activity about to run.
type BeforeHook func(ctx context.Context, value any) error

// AfterHook is the method shape a hook source must expose under
// "After"+CamelName(activity) to observe a completed activity.
type AfterHook func(ctx context.Context, value any) error

// SetupHook is the method shape a hook source exposes as Setup, invoked
// once by the worker pool before any item begins.
type SetupHook func(ctx context.Context, items []any) error

// CleanupHook is the method shape a hook source exposes as Cleanup,
// invoked once by the worker pool after every worker has finished.
type CleanupHook func(ctx context.Context) error

// Dispatcher resolves and invokes hook methods on a user-supplied source
// object. It builds its method table once at construction, so repeated
// dispatch during a run never pays reflection lookup cost beyond the first
// pass over each activity name.
type Dispatcher struct {
	source  any
	timeout time.Duration
	logger  *xlog.Logger
	cache   map[string]reflect.Value
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithTimeout overrides DefaultTimeout for every hook call this Dispatcher makes.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger attaches a logger used for hook-level diagnostics. Passing nil is safe.
func WithLogger(l *xlog.Logger) Option {
	return func(disp *Dispatcher) {
		disp.logger = l
	}
}

// NewDispatcher builds a Dispatcher over source. source may be nil, in
// which case every Call is a no-op, matching the "no hook source
// configured" contract.
func NewDispatcher(source any, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		source:  source,
		timeout: DefaultTimeout,
		cache:   make(map[string]reflect.Value),
	}
	for _, opt := range opts {
		opt(d)
	}
	if source != nil {
		d.index(source)
	}
	return d
}

// Source exposes the underlying hook source so callers (the WorkerPool) may
// schedule its Setup/Cleanup methods directly.
func (d *Dispatcher) Source() any {
	if d == nil {
		return nil
	}
	return d.source
}

func (d *Dispatcher) index(source any) {
	v := reflect.ValueOf(source)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		d.cache[m.Name] = v.Method(i)
	}
}

// Before invokes Before$activityName if the hook source defines it.
func (d *Dispatcher) Before(ctx context.Context, activityName string, value any) error {
	return d.dispatch(ctx, MethodName("before", activityName), activityName, "before", value)
}

// After invokes After$activityName if the hook source defines it.
func (d *Dispatcher) After(ctx context.Context, activityName string, value any) error {
	return d.dispatch(ctx, MethodName("after", activityName), activityName, "after", value)
}

// Setup invokes the hook source's Setup method, if defined, with the full
// batch of seed items about to be processed.
func (d *Dispatcher) Setup(ctx context.Context, items []any) error {
	return d.dispatchLifecycle(ctx, "Setup", func(method reflect.Value) error {
		return d.invoke(ctx, method, "Setup", []reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(items)})
	})
}

// Cleanup invokes the hook source's Cleanup method, if defined.
func (d *Dispatcher) Cleanup(ctx context.Context) error {
	return d.dispatchLifecycle(ctx, "Cleanup", func(method reflect.Value) error {
		return d.invoke(ctx, method, "Cleanup", []reflect.Value{reflect.ValueOf(ctx)})
	})
}

func (d *Dispatcher) dispatchLifecycle(_ context.Context, name string, call func(reflect.Value) error) error {
	if d == nil || d.source == nil {
		return nil
	}
	method, ok := d.cache[name]
	if !ok {
		return nil
	}
	return call(method)
}

func (d *Dispatcher) dispatch(ctx context.Context, methodName, activityName, event string, value any) error {
	if d == nil || d.source == nil || methodName == "" {
		return nil
	}
	method, ok := d.cache[methodName]
	if !ok {
		return nil
	}
	if d.logger != nil {
		d.logger.Debug("dispatching hook", map[string]any{"hook": methodName, "activity": activityName, "event": event})
	}
	valueArg := reflect.ValueOf(value)
	if !valueArg.IsValid() && method.Type().NumIn() > 1 {
		valueArg = reflect.Zero(method.Type().In(1))
	}
	return d.invoke(ctx, method, fmt.Sprintf("%s$%s", event, activityName), []reflect.Value{reflect.ValueOf(ctx), valueArg})
}

// invoke races method.Call against the configured timeout. If the timeout
// fires first, the goroutine carrying the call is left running (its result
// is simply discarded) and a HookTimeout error is returned.
func (d *Dispatcher) invoke(ctx context.Context, method reflect.Value, label string, args []reflect.Value) error {
	type outcome struct {
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("hook panicked: %v", r)}
			}
		}()
		results := method.Call(args)
		var err error
		if len(results) > 0 {
			if last, ok := results[len(results)-1].Interface().(error); ok {
				err = last
			}
		}
		done <- outcome{err: err}
	}()

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return &hookFailure{hook: label, cause: res.err}
		}
		return nil
	case <-timer.C:
		if d.logger != nil {
			d.logger.Warn("hook timed out", map[string]any{"hook": label, "timeout": d.timeout.String()})
		}
		return &hookTimeout{hook: label}
	case <-ctx.Done():
		return &hookTimeout{hook: label}
	}
}

// hookTimeout and hookFailure are unexported; the Runner translates them
// into flowerrors.HookTimeout / flowerrors.HookFailure through IsTimeout and
// IsFailure.
type hookTimeout struct{ hook string }

func (e *hookTimeout) Error() string { return fmt.Sprintf("hook %q timed out", e.hook) }

// Hook returns the label of the hook that timed out: "event$activityName"
// with the activity name as given (not mangled), or "Setup"/"Cleanup".
func (e *hookTimeout) Hook() string { return e.hook }

type hookFailure struct {
	hook  string
	cause error
}

func (e *hookFailure) Error() string { return fmt.Sprintf("hook %q failed: %v", e.hook, e.cause) }
func (e *hookFailure) Unwrap() error { return e.cause }

// Hook returns the label of the hook that failed, in the same form as
// hookTimeout.Hook.
func (e *hookFailure) Hook() string { return e.hook }

// Cause returns the underlying error the hook returned or panicked with.
func (e *hookFailure) Cause() error { return e.cause }

// IsTimeout reports whether err originated from a hook exceeding its deadline.
func IsTimeout(err error) (hookName string, ok bool) {
	if t, isT := err.(*hookTimeout); isT {
		return t.Hook(), true
	}
	return "", false
}

// IsFailure reports whether err originated from a hook returning/panicking with an error.
func IsFailure(err error) (hookName string, cause error, ok bool) {
	if f, isF := err.(*hookFailure); isF {
		return f.Hook(), f.Cause(), true
	}
	return "", nil, false
}
