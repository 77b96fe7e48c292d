package flowkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rgalloway/flowkit/pkg/flowerrors"
)

type countCtx struct {
	Count int
	Items []int
}

func TestRunOnceOnlyPipeline(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("scenario1").
		Do("a", func(_ context.Context, _ any, v any) (any, error) { return v.(int) + 1, nil }).
		Do("b", func(_ context.Context, _ any, v any) (any, error) { return v.(int) * 2, nil }).
		Build()
	require.NoError(t, err)

	result, err := NewRunner().Run(context.Background(), p, 3)
	require.NoError(t, err)
	require.Equal(t, 8, result)
}

func TestRunWhileLoop(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("scenario2").
		Do("init", func(_ context.Context, _ any, _ any) (any, error) { return countCtx{}, nil }).
		DoWhile("loop",
			PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) { return v.(countCtx).Count < 3, nil }),
			ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
				c := v.(countCtx)
				c.Count++
				return c, nil
			})).
		Build()
	require.NoError(t, err)

	result, err := NewRunner().Run(context.Background(), p, nil)
	require.NoError(t, err)
	require.Equal(t, countCtx{Count: 3}, result)
}

func TestRunUntilLoop(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("scenario3").
		Do("init", func(_ context.Context, _ any, _ any) (any, error) { return countCtx{}, nil }).
		DoUntil("loop",
			PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) { return v.(countCtx).Count >= 2, nil }),
			ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
				c := v.(countCtx)
				c.Count++
				return c, nil
			})).
		Build()
	require.NoError(t, err)

	result, err := NewRunner().Run(context.Background(), p, nil)
	require.NoError(t, err)
	require.Equal(t, countCtx{Count: 2}, result)
}

type splitResult struct {
	Items   []int
	Results []int
}

func TestRunSplitWithRejection(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("scenario4").
		Do("init", func(_ context.Context, _ any, _ any) (any, error) {
			return splitResult{Items: []int{1, 2, 3}}, nil
		}).
		DoSplit("par",
			SplitterFunc(func(_ context.Context, _ any, v any) ([]any, error) {
				items := v.(splitResult).Items
				subs := make([]any, len(items))
				for i, n := range items {
					subs[i] = n
				}
				return subs, nil
			}),
			RejoinerFunc(func(_ context.Context, _ any, original any, settled []Settlement) (any, error) {
				orig := original.(splitResult)
				var results []int
				for _, s := range settled {
					if s.Fulfilled() {
						results = append(results, s.Value.(int))
					}
				}
				orig.Results = results
				return orig, nil
			}),
			ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
				n := v.(int)
				if n == 2 {
					return nil, errors.New("boom on two")
				}
				return n * 10, nil
			})).
		Build()
	require.NoError(t, err)

	result, err := NewRunner().Run(context.Background(), p, nil)
	require.NoError(t, err)
	require.Equal(t, splitResult{Items: []int{1, 2, 3}, Results: []int{10, 30}}, result)
}

func TestRunBreakInsideWhile(t *testing.T) {
	t.Parallel()

	inner := NewBuilder("inner").
		Do("inc", func(_ context.Context, _ any, v any) (any, error) {
			c := v.(countCtx)
			c.Count++
			c.Items = append(append([]int(nil), c.Items...), c.Count)
			return c, nil
		}).
		DoBreak("brk", PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) {
			return v.(countCtx).Count >= 3, nil
		}))

	outer, err := NewBuilder("scenario5").
		DoWhile("loop",
			PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) { return v.(countCtx).Count < 100, nil }),
			inner).
		Build()
	require.NoError(t, err)

	result, err := NewRunner().Run(context.Background(), outer, countCtx{})
	require.NoError(t, err)
	require.Equal(t, countCtx{Count: 3, Items: []int{1, 2, 3}}, result)
}

type pipeItem struct {
	V   int
	Bad bool
}

func TestPipeSettlesIndependentFailures(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("scenario6").
		Do("do", func(_ context.Context, _ any, v any) (any, error) {
			item := v.(pipeItem)
			if item.Bad {
				return nil, errors.New("bad item")
			}
			return item.V, nil
		}).
		Build()
	require.NoError(t, err)

	piper := NewPiper(p, WithPoolSize(4))
	settled, err := piper.Pipe(context.Background(), []any{
		pipeItem{V: 1},
		pipeItem{Bad: true},
		pipeItem{V: 2},
	})
	require.NoError(t, err)
	require.Len(t, settled, 3)
	require.True(t, settled[0].Fulfilled())
	require.Equal(t, 1, settled[0].Value)
	require.False(t, settled[1].Fulfilled())
	require.Error(t, settled[1].Reason)
	require.True(t, settled[2].Fulfilled())
	require.Equal(t, 2, settled[2].Value)
}

func TestControlFlowOutsideLoopFails(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("bad-control-flow").
		DoBreak("brk", PredicateFunc(truePred)).
		Build()
	require.NoError(t, err)

	_, err = NewRunner().Run(context.Background(), p, nil)
	require.Error(t, err)
}

func TestHookBeforeAfterCalledOnSuccess(t *testing.T) {
	t.Parallel()

	hooks := &recordingHookSource{}
	p, err := NewBuilder("hookrun").
		WithHooks(hooks).
		Do("fetch data", func(_ context.Context, _ any, v any) (any, error) { return v, nil }).
		Build()
	require.NoError(t, err)

	_, err = NewRunner().Run(context.Background(), p, "x")
	require.NoError(t, err)
	require.Equal(t, 1, hooks.before)
	require.Equal(t, 1, hooks.after)
}

type recordingHookSource struct {
	before int
	after  int
}

func (h *recordingHookSource) BeforeFetchData(_ context.Context, _ any) error {
	h.before++
	return nil
}

func (h *recordingHookSource) AfterFetchData(_ context.Context, _ any) error {
	h.after++
	return nil
}

func TestHookAfterNotCalledOnActivityFailure(t *testing.T) {
	t.Parallel()

	hooks := &recordingHookSource{}
	p, err := NewBuilder("hookfail").
		WithHooks(hooks).
		Do("fetch data", func(_ context.Context, _ any, _ any) (any, error) { return nil, errors.New("boom") }).
		Build()
	require.NoError(t, err)

	_, err = NewRunner().Run(context.Background(), p, "x")
	require.Error(t, err)
	require.Equal(t, 1, hooks.before)
	require.Equal(t, 0, hooks.after)
}

type failingAfterHookSource struct{}

func (failingAfterHookSource) BeforeFetchData(_ context.Context, _ any) error { return nil }

func (failingAfterHookSource) AfterFetchData(_ context.Context, _ any) error {
	return errors.New("after hook exploded")
}

func TestHookFailureTranslatedToFlowerrors(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("hook-failure").
		WithHooks(failingAfterHookSource{}).
		Do("fetch data", func(_ context.Context, _ any, v any) (any, error) { return v, nil }).
		Build()
	require.NoError(t, err)

	_, err = NewRunner().Run(context.Background(), p, "x")
	require.Error(t, err)

	var hookFailure *flowerrors.HookFailure
	require.ErrorAs(t, err, &hookFailure)
	require.Equal(t, "after$fetch data", hookFailure.Hook)
}

type slowBeforeHookSource struct{}

func (slowBeforeHookSource) BeforeFetchData(ctx context.Context, _ any) error {
	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	return nil
}

func (slowBeforeHookSource) AfterFetchData(_ context.Context, _ any) error { return nil }

func TestHookTimeoutTranslatedToFlowerrors(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("hook-timeout").
		WithHooks(slowBeforeHookSource{}).
		WithSettings(Settings{HookTimeout: 5}).
		Do("fetch data", func(_ context.Context, _ any, v any) (any, error) { return v, nil }).
		Build()
	require.NoError(t, err)

	_, err = NewRunner().Run(context.Background(), p, "x")
	require.Error(t, err)

	var hookTimeout *flowerrors.HookTimeout
	require.ErrorAs(t, err, &hookTimeout)
	require.Equal(t, "before$fetch data", hookTimeout.Hook)
}

func TestRunnerHookTimeoutOverridesPipelineSettings(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("hook-timeout-override").
		WithHooks(slowBeforeHookSource{}).
		WithSettings(Settings{HookTimeout: 5_000}).
		Do("fetch data", func(_ context.Context, _ any, v any) (any, error) { return v, nil }).
		Build()
	require.NoError(t, err)

	_, err = NewRunner(WithHookTimeout(5*time.Millisecond)).Run(context.Background(), p, "x")
	require.Error(t, err)

	var hookTimeout *flowerrors.HookTimeout
	require.ErrorAs(t, err, &hookTimeout)
}

func TestTerminalAlwaysRunsAndAggregatesErrors(t *testing.T) {
	t.Parallel()

	p, err := NewBuilder("terminal-agg").
		Do("a", func(_ context.Context, _ any, _ any) (any, error) { return nil, errors.New("activity failed") }).
		Done(func(_ context.Context, _ any, _ any, runErr error) (any, error) {
			require.Error(t, runErr)
			return nil, errors.New("terminal also failed")
		}).
		Build()
	require.NoError(t, err)

	_, err = NewRunner().Run(context.Background(), p, nil)
	require.Error(t, err)
	var termFailure interface{ Unwrap() []error }
	require.ErrorAs(t, err, &termFailure)
	require.Len(t, termFailure.Unwrap(), 2)
}
