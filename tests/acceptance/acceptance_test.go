// Package acceptance holds end-to-end Given/When/Then scenarios exercising
// flowkit's public API as a library consumer would, independent of the
// package-level unit tests living alongside the implementation.
package acceptance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgalloway/flowkit/pkg/flowkit"
)

// Scenario 1: a single ONCE-only pipeline.
// Given two ONCE activities that increment then double the context,
// When the pipeline runs against seed 3,
// Then the result is 8.
func TestScenario_SinglePipelineOnceOnly(t *testing.T) {
	p, err := flowkit.NewBuilder("scenario-1").
		Do("a", flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) { return v.(int) + 1, nil })).
		Do("b", flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) { return v.(int) * 2, nil })).
		Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), p, 3)
	require.NoError(t, err)
	require.Equal(t, 8, result)
}

type counter struct{ Count int }

// Scenario 2: a WHILE loop.
// Given an init activity seeding {count:0} and a WHILE loop incrementing
// count while it is below 3,
// When the pipeline runs,
// Then the result is {count:3}.
func TestScenario_WhileLoop(t *testing.T) {
	p, err := flowkit.NewBuilder("scenario-2").
		Do("init", flowkit.ActivityFunc(func(_ context.Context, _ any, _ any) (any, error) { return counter{}, nil })).
		DoWhile("loop",
			flowkit.PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) { return v.(counter).Count < 3, nil }),
			flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
				c := v.(counter)
				c.Count++
				return c, nil
			})).
		Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), p, nil)
	require.NoError(t, err)
	require.Equal(t, counter{Count: 3}, result)
}

// Scenario 3: an UNTIL loop.
// Given the same shape as scenario 2 but with an UNTIL predicate checking
// count >= 2,
// When the pipeline runs,
// Then the body executes exactly twice and the result is {count:2}.
func TestScenario_UntilLoop(t *testing.T) {
	p, err := flowkit.NewBuilder("scenario-3").
		Do("init", flowkit.ActivityFunc(func(_ context.Context, _ any, _ any) (any, error) { return counter{}, nil })).
		DoUntil("loop",
			flowkit.PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) { return v.(counter).Count >= 2, nil }),
			flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
				c := v.(counter)
				c.Count++
				return c, nil
			})).
		Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), p, nil)
	require.NoError(t, err)
	require.Equal(t, counter{Count: 2}, result)
}

type splitContext struct {
	Items   []int
	Results []int
}

// Scenario 4: SPLIT with a rejected sub-context.
// Given a splitter fanning {items:[1,2,3]} out by element, a body that
// fails on n==2, and a rejoiner keeping only the fulfilled values times 10,
// When the pipeline runs,
// Then the result is {items:[1,2,3], results:[10,30]}.
func TestScenario_SplitWithRejection(t *testing.T) {
	p, err := flowkit.NewBuilder("scenario-4").
		Do("init", flowkit.ActivityFunc(func(_ context.Context, _ any, _ any) (any, error) {
			return splitContext{Items: []int{1, 2, 3}}, nil
		})).
		DoSplit("par",
			flowkit.SplitterFunc(func(_ context.Context, _ any, v any) ([]any, error) {
				items := v.(splitContext).Items
				subs := make([]any, len(items))
				for i, n := range items {
					subs[i] = n
				}
				return subs, nil
			}),
			flowkit.RejoinerFunc(func(_ context.Context, _ any, original any, settled []flowkit.Settlement) (any, error) {
				orig := original.(splitContext)
				var results []int
				for _, s := range settled {
					if s.Fulfilled() {
						results = append(results, s.Value.(int))
					}
				}
				orig.Results = results
				return orig, nil
			}),
			flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
				n := v.(int)
				if n == 2 {
					return nil, errors.New("boom on two")
				}
				return n * 10, nil
			})).
		Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), p, nil)
	require.NoError(t, err)
	require.Equal(t, splitContext{Items: []int{1, 2, 3}, Results: []int{10, 30}}, result)
}

type breakContext struct {
	Count int
	Items []int
}

// Scenario 5: BREAK inside a WHILE loop, wrapping a nested pipeline.
// Given an outer WHILE (count < 100) wrapping an inner pipeline that
// increments count/appends it then BREAKs once count >= 3,
// When the pipeline runs against {count:0, items:[]},
// Then the result is {count:3, items:[1,2,3]} — the outer loop stopped
// early despite its own predicate still being true.
func TestScenario_BreakInsideWhile(t *testing.T) {
	inner := flowkit.NewBuilder("scenario-5-inner").
		Do("inc", flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
			c := v.(breakContext)
			c.Count++
			c.Items = append(append([]int(nil), c.Items...), c.Count)
			return c, nil
		})).
		DoBreak("brk", flowkit.PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) {
			return v.(breakContext).Count >= 3, nil
		}))

	outer, err := flowkit.NewBuilder("scenario-5").
		DoWhile("loop",
			flowkit.PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) { return v.(breakContext).Count < 100, nil }),
			inner).
		Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), outer, breakContext{})
	require.NoError(t, err)
	require.Equal(t, breakContext{Count: 3, Items: []int{1, 2, 3}}, result)
}

type pipeItem struct {
	V   int
	Bad bool
}

// Scenario 6: pipe() settles independent failures.
// Given a pipeline whose single activity fails when the item is marked
// bad, and three seed items [1, bad, 2],
// When they are piped through a Piper with pool size 4,
// Then the result is three settlement records in input order:
// fulfilled(1), rejected, fulfilled(2) — regardless of scheduling order.
func TestScenario_PipeSettlesIndependentFailures(t *testing.T) {
	p, err := flowkit.NewBuilder("scenario-6").
		Do("do", flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
			item := v.(pipeItem)
			if item.Bad {
				return nil, errors.New("bad item")
			}
			return item.V, nil
		})).
		Build()
	require.NoError(t, err)

	settled, err := flowkit.NewPiper(p, flowkit.WithPoolSize(4)).Pipe(context.Background(), []any{
		pipeItem{V: 1},
		pipeItem{Bad: true},
		pipeItem{V: 2},
	})
	require.NoError(t, err)
	require.Len(t, settled, 3)
	require.True(t, settled[0].Fulfilled())
	require.Equal(t, 1, settled[0].Value)
	require.False(t, settled[1].Fulfilled())
	require.True(t, settled[2].Fulfilled())
	require.Equal(t, 2, settled[2].Value)
}

// Property: done never runs for a nested pipeline used as a WHILE/UNTIL
// loop body, but always runs for a SPLIT sub-pipeline, even per sub-context.
func TestScenario_DoneSkipsLoopBodyButRunsPerSplitSubcontext(t *testing.T) {
	loopTerminalCalls := 0
	innerLoop := flowkit.NewBuilder("done-loop-inner").
		Do("inc", flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) { return v.(int) + 1, nil })).
		Done(flowkit.TerminalFunc(func(_ context.Context, _ any, v any, _ error) (any, error) {
			loopTerminalCalls++
			return v, nil
		}))

	outerLoop, err := flowkit.NewBuilder("done-loop-outer").
		DoWhile("loop",
			flowkit.PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) { return v.(int) < 3, nil }),
			innerLoop).
		Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), outerLoop, 0)
	require.NoError(t, err)
	require.Equal(t, 3, result)
	require.Equal(t, 0, loopTerminalCalls, "a nested WHILE/UNTIL body's done callback must never run")

	splitTerminalCalls := 0
	innerSplit := flowkit.NewBuilder("done-split-inner").
		Do("double", flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) { return v.(int) * 2, nil })).
		Done(flowkit.TerminalFunc(func(_ context.Context, _ any, v any, _ error) (any, error) {
			splitTerminalCalls++
			return v, nil
		}))

	splitPipeline, err := flowkit.NewBuilder("done-split-outer").
		DoSplit("par",
			flowkit.SplitterFunc(func(_ context.Context, _ any, v any) ([]any, error) {
				nums := v.([]int)
				subs := make([]any, len(nums))
				for i, n := range nums {
					subs[i] = n
				}
				return subs, nil
			}),
			flowkit.RejoinerFunc(func(_ context.Context, _ any, _ any, settled []flowkit.Settlement) (any, error) {
				out := make([]int, len(settled))
				for i, s := range settled {
					out[i] = s.Value.(int)
				}
				return out, nil
			}),
			innerSplit).
		Build()
	require.NoError(t, err)

	splitResult, err := flowkit.NewRunner().Run(context.Background(), splitPipeline, []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 6}, splitResult)
	require.Equal(t, 3, splitTerminalCalls, "done must run once per SPLIT sub-context")
}
