package flowkit

import "context"

// Event is a lifecycle notification delivered to every registered Observer.
// Events are purely informational: nothing in the Runner waits on or
// branches on an Observer's return value, so observers cannot alter
// execution. Grounded on the teacher's agent runtime hook bus, generalized
// from agent-run events to pipeline-run events.
type Event struct {
	Kind       EventKind
	PipelineID string
	Activity   string
	Value      any
	Err        error
}

// EventKind discriminates the four lifecycle notifications an Observer may receive.
type EventKind int

const (
	// ActivityStarted fires immediately before an activity's body runs.
	ActivityStarted EventKind = iota
	// ActivityFinished fires after an activity's body returns, successfully or not.
	ActivityFinished
	// LoopIteration fires once per WHILE/UNTIL iteration, after the body completes.
	LoopIteration
	// SplitFanOut fires once a SPLIT's splitter has produced its sub-contexts.
	SplitFanOut
)

// Observer receives lifecycle Events from a Runner. Implementations must
// return quickly; the Runner delivers events synchronously on the
// executing goroutine and does not buffer them.
type Observer interface {
	Observe(ctx context.Context, evt Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx context.Context, evt Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, evt Event) { f(ctx, evt) }

// multiObserver fans one notification out to every registered Observer in
// registration order.
type multiObserver []Observer

func (m multiObserver) Observe(ctx context.Context, evt Event) {
	for _, o := range m {
		o.Observe(ctx, evt)
	}
}

func notify(ctx context.Context, o Observer, evt Event) {
	if o == nil {
		return
	}
	o.Observe(ctx, evt)
}
