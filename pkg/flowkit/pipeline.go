package flowkit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rgalloway/flowkit/hooks"
)

// Pipeline is an immutable, insertion-ordered list of activities produced
// by Builder.Build. It may be executed any number of times by a Runner or
// fanned out across many seed contexts by a Piper; no state persists
// between executions.
type Pipeline struct {
	id         string
	activities []*ActivityDef
	terminal   TerminalFunc
	settings   Settings
	observer   Observer

	mu           sync.Mutex
	hookSource   any
	parentAction any
	disp         *hooks.Dispatcher
}

// ID returns the Pipeline's stable identifier, assigned at Build time.
func (p *Pipeline) ID() string { return p.id }

// Activities returns the Pipeline's ordered activity list. Callers must
// not mutate the returned slice's elements.
func (p *Pipeline) Activities() []*ActivityDef { return p.activities }

// HookSource returns the currently attached hook source, or nil.
func (p *Pipeline) HookSource() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hookSource
}

// ParentAction returns the currently attached parent action, or nil.
func (p *Pipeline) ParentAction() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parentAction
}

// ensureHookSource idempotently attaches source if this Pipeline has none
// of its own yet. Safe for concurrent callers (a SPLIT may run this
// Pipeline as the body of many sub-contexts at once).
func (p *Pipeline) ensureHookSource(source any) {
	if source == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hookSource == nil {
		p.hookSource = source
	}
}

// ensureParentAction idempotently attaches action if this Pipeline has none of its own yet.
func (p *Pipeline) ensureParentAction(action any) {
	if action == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parentAction == nil {
		p.parentAction = action
	}
}

// dispatcher lazily builds this Pipeline's hooks.Dispatcher from whatever
// hook source is currently attached, the first time any activity actually
// needs one. Built once; later hook-source attachment after the first
// dispatch has no further effect, which matches the "attach if absent"
// idempotence rule since dispatch always happens after any attachment a
// well-formed pipeline graph would perform.
func (p *Pipeline) dispatcher(opts ...hooks.Option) *hooks.Dispatcher {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disp == nil {
		p.disp = hooks.NewDispatcher(p.hookSource, opts...)
	}
	return p.disp
}

// Describe returns a read-only textual outline of the Pipeline's
// registered activities, one per line, indented to show SPLIT/loop
// nesting. Intended for debugging and documentation, not parsing.
func (p *Pipeline) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline %s\n", p.id)
	for _, act := range p.activities {
		describeActivity(&b, act, 1)
	}
	return b.String()
}

func describeActivity(b *strings.Builder, act *ActivityDef, depth int) {
	fmt.Fprintf(b, "%s%s\n", strings.Repeat("  ", depth), act)
	if nested, ok := act.Body.(*Pipeline); ok {
		fmt.Fprintf(b, "%snested pipeline %s\n", strings.Repeat("  ", depth+1), nested.id)
		for _, inner := range nested.activities {
			describeActivity(b, inner, depth+2)
		}
	}
}
