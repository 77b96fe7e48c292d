package flowkit

import (
	"context"
	"time"

	"github.com/rgalloway/flowkit/hooks"
	"github.com/rgalloway/flowkit/internal/xlog"
	"github.com/rgalloway/flowkit/pkg/flowerrors"
)

// Runner is the Interpreter described in spec.md §4.3: the state machine
// that drives one Pipeline's activities, loops, branches, SPLIT fan-out,
// and break/continue signalling. A Runner holds no per-run state; every
// call to Run starts a fresh run with its own signalBus, so one Runner may
// be shared across concurrent calls.
type Runner struct {
	hookTimeout time.Duration
	logger      *xlog.Logger
}

// NewRunner builds a Runner with the given options applied over spec.md
// §6's defaults (1,000ms hook timeout).
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// runState is the mutable state shared across one top-level Run call and
// every nested Pipeline it recurses into: the break/continue signal bus
// and a run id used only for log correlation. logger is r.logger with the
// run id attached, so every log line emitted while this run is in flight
// carries it, regardless of how deep the activity is nested.
type runState struct {
	bus    *signalBus
	runID  string
	logger *xlog.Logger
}

// Run executes p from seed to completion: every activity runs in
// insertion order (subject to loop/branch/split semantics), and if p has a
// terminal callback, it is invoked exactly once with the final value (or
// error) before Run returns.
func (r *Runner) Run(ctx context.Context, p *Pipeline, seed any) (any, error) {
	runID := randomSuffix(12)
	rs := &runState{
		bus:    newSignalBus(),
		runID:  runID,
		logger: r.logger.With(map[string]any{"run_id": runID}),
	}
	value, runErr := r.execute(ctx, p, seed, "", rs)
	return r.finalize(ctx, p, value, runErr)
}

func (r *Runner) finalize(ctx context.Context, p *Pipeline, value any, runErr error) (any, error) {
	if p.terminal == nil {
		return value, runErr
	}
	if runErr != nil {
		value = nil
	}
	out, termErr := p.terminal(ctx, p.ParentAction(), value, runErr)
	if termErr != nil {
		return out, flowerrors.NewTerminalFailure(runErr, termErr)
	}
	return out, runErr
}

// execute runs every activity of p against value, in order. parentLoopID
// identifies the lexically enclosing loop BREAK/CONTINUE inside p may
// target; an empty string means p is not itself the body of a WHILE/UNTIL
// activity, so control-flow markers here are a structural error. execute
// never invokes p's terminal callback — that only happens for a top-level
// Run (see Piper for the SPLIT-via-nested-Pipeline case, which reaches its
// own terminal through its own Run call per sub-context).
func (r *Runner) execute(ctx context.Context, p *Pipeline, value any, parentLoopID string, rs *runState) (any, error) {
	current := value
	for _, act := range p.activities {
		if err := ctx.Err(); err != nil {
			return current, err
		}
		next, stop, err := r.step(ctx, p, act, current, parentLoopID, rs)
		if err != nil {
			return current, err
		}
		current = next
		if stop {
			break
		}
	}
	return current, nil
}

func (r *Runner) step(ctx context.Context, p *Pipeline, act *ActivityDef, value any, parentLoopID string, rs *runState) (any, bool, error) {
	switch act.Kind {
	case Break, Continue:
		return r.stepControlFlow(ctx, p, act, value, parentLoopID, rs)
	case If:
		return r.stepIf(ctx, p, act, value, rs)
	case While:
		v, err := r.stepWhile(ctx, p, act, value, rs)
		return v, false, err
	case Until:
		v, err := r.stepUntil(ctx, p, act, value, rs)
		return v, false, err
	case Split:
		v, err := r.stepSplit(ctx, p, act, value, rs)
		return v, false, err
	default:
		v, err := r.runActivity(ctx, p, act, value, "", rs, r.bodyExec(p, rs))
		return v, false, err
	}
}

func (r *Runner) stepControlFlow(ctx context.Context, p *Pipeline, act *ActivityDef, value any, parentLoopID string, rs *runState) (any, bool, error) {
	if parentLoopID == "" {
		return value, true, flowerrors.NewControlFlowOutsideLoop(act.Name)
	}
	ok, err := r.evalPredicate(ctx, act.Pred, p.ParentAction(), value)
	if err != nil {
		return value, true, flowerrors.NewActivityFailure(p.id, act.Name, err)
	}
	if !ok {
		return value, false, nil
	}
	if act.Kind == Break {
		rs.bus.publish(parentLoopID)
	}
	return value, true, nil
}

func (r *Runner) stepIf(ctx context.Context, p *Pipeline, act *ActivityDef, value any, rs *runState) (any, bool, error) {
	ok, err := r.evalPredicate(ctx, act.Pred, p.ParentAction(), value)
	if err != nil {
		return value, true, flowerrors.NewActivityFailure(p.id, act.Name, err)
	}
	if !ok {
		return value, false, nil
	}
	next, err := r.runActivity(ctx, p, act, value, "", rs, r.bodyExec(p, rs))
	return next, false, err
}

func (r *Runner) stepWhile(ctx context.Context, p *Pipeline, act *ActivityDef, value any, rs *runState) (any, error) {
	ch := rs.bus.subscribe(act.loopID)
	defer rs.bus.unsubscribe(act.loopID)

	current := value
	for {
		if err := ctx.Err(); err != nil {
			return current, err
		}
		ok, err := r.evalPredicate(ctx, act.Pred, p.ParentAction(), current)
		if err != nil {
			return current, flowerrors.NewActivityFailure(p.id, act.Name, err)
		}
		if !ok {
			return current, nil
		}
		next, err := r.runActivity(ctx, p, act, current, act.loopID, rs, r.bodyExec(p, rs))
		if err != nil {
			return current, err
		}
		current = next
		notify(ctx, p.observer, Event{Kind: LoopIteration, PipelineID: p.id, Activity: act.Name, Value: current})
		if fired(ch) {
			return current, nil
		}
	}
}

func (r *Runner) stepUntil(ctx context.Context, p *Pipeline, act *ActivityDef, value any, rs *runState) (any, error) {
	ch := rs.bus.subscribe(act.loopID)
	defer rs.bus.unsubscribe(act.loopID)

	current := value
	for {
		if err := ctx.Err(); err != nil {
			return current, err
		}
		next, err := r.runActivity(ctx, p, act, current, act.loopID, rs, r.bodyExec(p, rs))
		if err != nil {
			return current, err
		}
		current = next
		notify(ctx, p.observer, Event{Kind: LoopIteration, PipelineID: p.id, Activity: act.Name, Value: current})
		if fired(ch) {
			return current, nil
		}
		ok, err := r.evalPredicate(ctx, act.Pred, p.ParentAction(), current)
		if err != nil {
			return current, flowerrors.NewActivityFailure(p.id, act.Name, err)
		}
		if ok {
			return current, nil
		}
	}
}

// runActivity wraps exec with before/after hook dispatch and observer
// notifications, shared by every activity kind that has a body (ONCE, IF,
// the per-iteration body of WHILE/UNTIL, and SPLIT).
func (r *Runner) runActivity(ctx context.Context, p *Pipeline, act *ActivityDef, value any, loopIDForBody string, rs *runState, exec func(context.Context, *ActivityDef, any, string) (any, error)) (any, error) {
	disp := p.dispatcher(r.dispatcherOptions(p)...)

	rs.logger.Debug("activity started", map[string]any{"pipeline": p.id, "activity": act.Name})
	notify(ctx, p.observer, Event{Kind: ActivityStarted, PipelineID: p.id, Activity: act.Name, Value: value})

	if err := disp.Before(ctx, act.Name, value); err != nil {
		return nil, translateHookErr(err)
	}

	result, err := exec(ctx, act, value, loopIDForBody)
	if err != nil {
		wrapped := flowerrors.NewActivityFailure(p.id, act.Name, err)
		notify(ctx, p.observer, Event{Kind: ActivityFinished, PipelineID: p.id, Activity: act.Name, Err: wrapped})
		return nil, wrapped
	}

	if err := disp.After(ctx, act.Name, result); err != nil {
		return nil, translateHookErr(err)
	}

	rs.logger.Debug("activity finished", map[string]any{"pipeline": p.id, "activity": act.Name})
	notify(ctx, p.observer, Event{Kind: ActivityFinished, PipelineID: p.id, Activity: act.Name, Value: result})
	return result, nil
}

// translateHookErr converts the hooks package's unexported before/after
// dispatch errors into the public flowerrors taxonomy. hooks.IsTimeout/
// IsFailure already report the hook label (e.g. "before$fetch data"), so
// no additional activity context needs threading through here. Errors from exec (the activity body itself) are never
// passed through here; only disp.Before/disp.After results are.
func translateHookErr(err error) error {
	if hookName, ok := hooks.IsTimeout(err); ok {
		return flowerrors.NewHookTimeout(hookName)
	}
	if hookName, cause, ok := hooks.IsFailure(err); ok {
		return flowerrors.NewHookFailure(hookName, cause)
	}
	return err
}

// bodyExec returns the body executor used by ONCE/IF/WHILE/UNTIL
// activities, closing over the owning Pipeline and the shared run state.
func (r *Runner) bodyExec(p *Pipeline, rs *runState) func(context.Context, *ActivityDef, any, string) (any, error) {
	return func(ctx context.Context, act *ActivityDef, value any, loopIDForBody string) (any, error) {
		return r.runBody(ctx, p, act.Body, value, loopIDForBody, rs)
	}
}

func (r *Runner) evalPredicate(ctx context.Context, pred PredicateFunc, parentAction any, value any) (bool, error) {
	if pred == nil {
		return false, nil
	}
	return pred(ctx, parentAction, value)
}

// runBody executes an activity's body. An ActivityFunc's result is checked
// for a tagged return (a *Builder/*Pipeline signalling "run this nested
// pipeline instead of treating my result as the new context"); a body
// that is itself a *Pipeline (registered directly as a WHILE/UNTIL/IF
// operand) is attached to the current hook source/parent action if it has
// none of its own, then executed with loopIDForBody as its own
// parentLoop so BREAK/CONTINUE inside it are scoped correctly.
func (r *Runner) runBody(ctx context.Context, owner *Pipeline, body any, value any, loopIDForBody string, rs *runState) (any, error) {
	switch b := body.(type) {
	case ActivityFunc:
		result, err := b(ctx, owner.ParentAction(), value)
		if err != nil {
			return nil, err
		}
		return r.resolveTagged(ctx, owner, result, value, loopIDForBody, rs)
	case *Pipeline:
		b.ensureHookSource(owner.HookSource())
		b.ensureParentAction(owner.ParentAction())
		return r.execute(ctx, b, value, loopIDForBody, rs)
	default:
		return nil, flowerrors.NewUnknownBodyKind("")
	}
}

// resolveTagged implements the "dynamic return of a nested pipeline from a
// body" design note: if result is a *Builder or already-built *Pipeline,
// it is executed recursively on original (the context the activity was
// invoked with), not treated as the new context value itself. A nil
// result retains original, matching the "absent value" rule.
func (r *Runner) resolveTagged(ctx context.Context, owner *Pipeline, result any, original any, loopIDForBody string, rs *runState) (any, error) {
	switch v := result.(type) {
	case *Builder:
		built, err := v.Build()
		if err != nil {
			return nil, err
		}
		built.ensureHookSource(owner.HookSource())
		built.ensureParentAction(owner.ParentAction())
		return r.execute(ctx, built, original, loopIDForBody, rs)
	case *Pipeline:
		v.ensureHookSource(owner.HookSource())
		v.ensureParentAction(owner.ParentAction())
		return r.execute(ctx, v, original, loopIDForBody, rs)
	case nil:
		return original, nil
	default:
		return v, nil
	}
}
