package flowkit

import (
	"context"
	"sync"

	"github.com/rgalloway/flowkit/pkg/flowerrors"
)

// stepSplit runs a SPLIT activity: fan the context out via the splitter,
// run the body on every sub-context, and fold the settled results back via
// the rejoiner. Like every other kind, it runs under the activity's
// before/after hook dispatch.
func (r *Runner) stepSplit(ctx context.Context, p *Pipeline, act *ActivityDef, value any, rs *runState) (any, error) {
	exec := func(ctx context.Context, act *ActivityDef, value any, _ string) (any, error) {
		return r.runSplitBody(ctx, p, act, value, rs)
	}
	return r.runActivity(ctx, p, act, value, "", rs, exec)
}

func (r *Runner) runSplitBody(ctx context.Context, p *Pipeline, act *ActivityDef, value any, rs *runState) (any, error) {
	subs, err := act.Splitter(ctx, p.ParentAction(), value)
	if err != nil {
		return nil, err
	}
	notify(ctx, p.observer, Event{Kind: SplitFanOut, PipelineID: p.id, Activity: act.Name, Value: subs})

	var settled []Settlement
	switch body := act.Body.(type) {
	case *Pipeline:
		body.ensureHookSource(p.HookSource())
		body.ensureParentAction(p.ParentAction())
		piper := NewPiper(body, WithPoolSize(p.settings.poolSize()), WithRunner(r))
		settled, err = piper.pipeInternal(ctx, subs)
		if err != nil {
			return nil, err
		}
	case ActivityFunc:
		settled = r.runParallel(ctx, p.ParentAction(), body, subs)
	default:
		return nil, flowerrors.NewUnknownBodyKind(act.Name)
	}

	return act.Rejoiner(ctx, p.ParentAction(), value, settled)
}

// runParallel executes fn on every sub-context concurrently and settles
// each outcome independently; one sub-context's failure never prevents the
// others from completing, and never short-circuits the rejoiner call.
func (r *Runner) runParallel(ctx context.Context, parentAction any, fn ActivityFunc, subs []any) []Settlement {
	out := make([]Settlement, len(subs))
	var wg sync.WaitGroup
	wg.Add(len(subs))
	for i, sub := range subs {
		go func(i int, sub any) {
			defer wg.Done()
			v, err := fn(ctx, parentAction, sub)
			if err != nil {
				out[i] = Settlement{Status: StatusRejected, Reason: err}
				return
			}
			out[i] = Settlement{Status: StatusFulfilled, Value: v}
		}(i, sub)
	}
	wg.Wait()
	return out
}
