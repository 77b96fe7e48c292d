package flowkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/rgalloway/flowkit/internal/hookload"
	"github.com/rgalloway/flowkit/pkg/flowerrors"
)

// Builder accumulates ActivityDefs and configuration in insertion order.
// Build freezes the accumulated state into an immutable Pipeline. A
// Builder is not safe for concurrent registration calls from multiple
// goroutines racing each other, matching the teacher's own non-concurrent
// config-loading pattern; it is safe to call WithAction concurrently with
// an in-flight nested Pipeline execution since that path only touches the
// already-built Pipeline's mutex-guarded fields.
type Builder struct {
	name string

	mu              sync.Mutex
	activities      []*ActivityDef
	names           map[string]struct{}
	buildErr        error
	hookSource      any
	hooksFilePath   string
	hooksFileExport string
	hooksConfigured bool
	action          any
	terminal        TerminalFunc
	observer        Observer
	settings        Settings
	debug           func(format string, args ...any)
}

// NewBuilder creates an empty Builder identified by name, used to derive the
// eventual Pipeline's id.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		names: make(map[string]struct{}),
	}
}

// WithSettings overrides the pool size / hook timeout defaults the
// resulting Pipeline carries.
func (b *Builder) WithSettings(s Settings) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings = s
	return b
}

// WithDebug attaches a debug callback forwarded to a plugin-loaded hook
// source's constructor (see WithHooksFile).
func (b *Builder) WithDebug(fn func(format string, args ...any)) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.debug = fn
	return b
}

// Do registers a ONCE activity: op runs exactly one time. op may be an
// ActivityFunc or a *Builder describing a nested pipeline, resolved at
// Build time the same way a loop or branch body is.
func (b *Builder) Do(name string, op any) *Builder {
	body, err := normalizeBody(op)
	if err != nil {
		return b.registerErr(name, err)
	}
	return b.register(&ActivityDef{Name: name, Kind: Once, Body: body})
}

// DoWhile registers a WHILE activity: pred is evaluated before every
// iteration of op. op may be an ActivityFunc or a *Builder describing a
// nested pipeline (resolved at Build time); BREAK/CONTINUE inside that
// nested pipeline target this loop.
func (b *Builder) DoWhile(name string, pred PredicateFunc, op any) *Builder {
	return b.registerLoop(name, While, pred, op)
}

// DoUntil registers an UNTIL activity: op runs, then pred is evaluated;
// the loop repeats while pred is false.
func (b *Builder) DoUntil(name string, pred PredicateFunc, op any) *Builder {
	return b.registerLoop(name, Until, pred, op)
}

// DoIf registers an IF activity: op runs at most once, only when pred is true.
func (b *Builder) DoIf(name string, pred PredicateFunc, op any) *Builder {
	body, err := normalizeBody(op)
	if err != nil {
		return b.registerErr(name, err)
	}
	return b.register(&ActivityDef{Name: name, Kind: If, Pred: pred, Body: body})
}

// DoSplit registers a SPLIT activity: splitter fans the context out,
// op runs on each sub-context, and rejoiner folds the settled results back.
func (b *Builder) DoSplit(name string, splitter SplitterFunc, rejoiner RejoinerFunc, op any) *Builder {
	body, err := normalizeBody(op)
	if err != nil {
		return b.registerErr(name, err)
	}
	return b.register(&ActivityDef{Name: name, Kind: Split, Splitter: splitter, Rejoiner: rejoiner, Body: body})
}

// DoBreak registers a BREAK marker: when pred is true, it signals the
// enclosing loop to stop. Only valid inside a Pipeline that is itself a
// WHILE/UNTIL activity's body.
func (b *Builder) DoBreak(name string, pred PredicateFunc) *Builder {
	return b.register(&ActivityDef{Name: name, Kind: Break, Pred: pred})
}

// DoContinue registers a CONTINUE marker: when pred is true, the remaining
// activities in this Pipeline are skipped and the enclosing loop proceeds
// to its next iteration check.
func (b *Builder) DoContinue(name string, pred PredicateFunc) *Builder {
	return b.register(&ActivityDef{Name: name, Kind: Continue, Pred: pred})
}

func (b *Builder) registerLoop(name string, kind Kind, pred PredicateFunc, op any) *Builder {
	body, err := normalizeBody(op)
	if err != nil {
		return b.registerErr(name, err)
	}
	act := &ActivityDef{Name: name, Kind: kind, Pred: pred, Body: body}
	b.mu.Lock()
	act.loopID = fmt.Sprintf("%s#%s#%d", b.name, name, len(b.activities))
	b.mu.Unlock()
	return b.register(act)
}

// normalizeBody accepts either an already-typed ActivityFunc, a bare func
// literal with ActivityFunc's exact signature (the common case when op was
// previously declared against a parameter typed ActivityFunc and relied on
// Go's direct-assignment conversion, which does not happen when boxing into
// an any parameter), or a *Builder describing a nested pipeline.
func normalizeBody(op any) (any, error) {
	switch v := op.(type) {
	case ActivityFunc:
		return v, nil
	case func(ctx context.Context, parentAction any, value any) (any, error):
		return ActivityFunc(v), nil
	case *Builder:
		return v, nil
	default:
		return nil, fmt.Errorf("body must be an ActivityFunc or a *Builder, got %T", op)
	}
}

// ActivityCount reports how many top-level activities have been registered
// so far, letting a caller size a progress indicator before Build completes.
func (b *Builder) ActivityCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.activities)
}

// ID returns the name this Builder was created with. It is the same tag
// Build derives the eventual Pipeline's id from, readable before Build is
// called.
func (b *Builder) ID() string {
	return b.name
}

func (b *Builder) register(act *ActivityDef) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buildErr != nil {
		return b
	}
	if err := act.validateShape(); err != nil {
		b.buildErr = flowerrors.NewInvalidSignature(act.Name, err.Error())
		return b
	}
	if _, dup := b.names[act.Name]; dup {
		b.buildErr = flowerrors.NewDuplicateActivity(act.Name)
		return b
	}
	b.names[act.Name] = struct{}{}
	b.activities = append(b.activities, act)
	return b
}

func (b *Builder) registerErr(name string, cause error) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buildErr == nil {
		b.buildErr = flowerrors.NewInvalidSignature(name, cause.Error())
	}
	return b
}

// WithHooks configures source as the hook source. Calling WithHooks or
// WithHooksFile a second time with a different target fails with
// HooksAlreadyConfigured; calling WithHooks again with the same instance is
// a no-op.
func (b *Builder) WithHooks(source any) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buildErr != nil {
		return b
	}
	if b.hooksConfigured {
		if b.hookSource == source {
			return b
		}
		b.buildErr = flowerrors.NewHooksAlreadyConfigured()
		return b
	}
	b.hookSource = source
	b.hooksConfigured = true
	return b
}

// WithHooksFile configures a hook source to be loaded, at Build time, from
// the Go plugin at path, via the exported symbol named exportName.
func (b *Builder) WithHooksFile(path, exportName string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buildErr != nil {
		return b
	}
	if b.hooksConfigured {
		if b.hooksFilePath == path && b.hooksFileExport == exportName {
			return b
		}
		b.buildErr = flowerrors.NewHooksAlreadyConfigured()
		return b
	}
	b.hooksFilePath, b.hooksFileExport = path, exportName
	b.hooksConfigured = true
	return b
}

// WithAction sets the parent action, only if one is not already set, and
// back-fills it onto every already-registered activity whose body is a
// nested pipeline (built or not yet built) that has no parent action of
// its own.
func (b *Builder) WithAction(action any) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.action == nil {
		b.action = action
	}
	for _, act := range b.activities {
		switch body := act.Body.(type) {
		case *Pipeline:
			body.ensureParentAction(action)
		case *Builder:
			body.mu.Lock()
			if body.action == nil {
				body.action = action
			}
			body.mu.Unlock()
		}
	}
	return b
}

// WithObserver registers a lifecycle Observer for the resulting Pipeline.
// Calling it more than once fans events out to every registered Observer.
func (b *Builder) WithObserver(o Observer) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o == nil {
		return b
	}
	switch existing := b.observer.(type) {
	case nil:
		b.observer = o
	case multiObserver:
		b.observer = append(existing, o)
	default:
		b.observer = multiObserver{existing, o}
	}
	return b
}

// Done registers the terminal callback. Calling it more than once keeps
// only the most recent registration.
func (b *Builder) Done(fn TerminalFunc) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.terminal = fn
	return b
}

// Build freezes the accumulated activities and configuration into an
// immutable Pipeline. Nested *Builder bodies are built recursively;
// the action's Setup method (if any) runs exactly once per action
// identity; a configured hook-source file is loaded via the standard
// library plugin package.
func (b *Builder) Build() (*Pipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buildErr != nil {
		return nil, b.buildErr
	}

	resolved := make([]*ActivityDef, len(b.activities))
	for i, act := range b.activities {
		clone := *act
		if nestedBuilder, ok := act.Body.(*Builder); ok {
			nestedPipeline, err := nestedBuilder.Build()
			if err != nil {
				return nil, fmt.Errorf("building nested pipeline for activity %q: %w", act.Name, err)
			}
			clone.Body = nestedPipeline
		}
		resolved[i] = &clone
	}

	if err := invokeActionSetup(b); err != nil {
		return nil, err
	}

	hookSource, err := b.resolveHookSource()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		id:           fmt.Sprintf("%s-%s", sanitizeID(b.name), randomSuffix(8)),
		activities:   resolved,
		terminal:     b.terminal,
		settings:     b.settings,
		observer:     b.observer,
		hookSource:   hookSource,
		parentAction: b.action,
	}
	return p, nil
}

func (b *Builder) resolveHookSource() (any, error) {
	if b.hookSource != nil {
		return b.hookSource, nil
	}
	if b.hooksFilePath == "" {
		return nil, nil
	}
	source, err := hookload.Load(b.hooksFilePath, b.hooksFileExport, b.debug)
	if err != nil {
		return nil, flowerrors.NewInvalidSignature(b.hooksFileExport, err.Error())
	}
	return source, nil
}
