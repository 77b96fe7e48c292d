package flowconfig

import (
	"github.com/rgalloway/flowkit/pkg/flowkit"
)

// Resolve walks doc and its nested pipeline documents, binding every named
// reference against reg, and returns the resulting Builder. Build errors
// (duplicate names, bad signatures) surface from the returned Builder's
// Build method exactly as they would from hand-written Do* calls; Resolve
// itself only reports names that are unregistered or registered under the
// wrong function type.
func Resolve(doc *Document, reg *ActivityRegistry) (*flowkit.Builder, error) {
	b := flowkit.NewBuilder(doc.Name)

	settings := flowkit.Settings{}
	if doc.Settings.PoolSize > 0 {
		settings.PoolSize = doc.Settings.PoolSize
	}
	if doc.Settings.HookTimeoutMillis > 0 {
		settings.HookTimeout = int64(doc.Settings.HookTimeoutMillis)
	}
	b.WithSettings(settings)

	if doc.Hooks != nil {
		b.WithHooksFile(doc.Hooks.Path, doc.Hooks.ExportName)
	}

	for _, a := range doc.Activities {
		if err := resolveActivity(b, a, reg); err != nil {
			return nil, err
		}
	}

	if doc.Done != "" {
		fn, err := reg.terminalFunc(doc.Done)
		if err != nil {
			return nil, err
		}
		b.Done(fn)
	}

	return b, nil
}

func resolveActivity(b *flowkit.Builder, a Activity, reg *ActivityRegistry) error {
	body, err := resolveBody(a, reg)
	if err != nil {
		return err
	}

	switch a.Kind {
	case "once":
		b.Do(a.Name, body)
	case "while":
		pred, err := reg.predicateFunc(a.Name, a.Predicate)
		if err != nil {
			return err
		}
		b.DoWhile(a.Name, pred, body)
	case "until":
		pred, err := reg.predicateFunc(a.Name, a.Predicate)
		if err != nil {
			return err
		}
		b.DoUntil(a.Name, pred, body)
	case "if":
		pred, err := reg.predicateFunc(a.Name, a.Predicate)
		if err != nil {
			return err
		}
		b.DoIf(a.Name, pred, body)
	case "split":
		splitter, err := reg.splitterFunc(a.Name, a.Splitter)
		if err != nil {
			return err
		}
		rejoiner, err := reg.rejoinerFunc(a.Name, a.Rejoiner)
		if err != nil {
			return err
		}
		b.DoSplit(a.Name, splitter, rejoiner, body)
	case "break":
		pred, err := reg.predicateFunc(a.Name, a.Predicate)
		if err != nil {
			return err
		}
		b.DoBreak(a.Name, pred)
	case "continue":
		pred, err := reg.predicateFunc(a.Name, a.Predicate)
		if err != nil {
			return err
		}
		b.DoContinue(a.Name, pred)
	}
	return nil
}

// resolveBody returns nil for break/continue, a nested *flowkit.Builder when
// a.Pipeline is set, or the registered ActivityFunc named by a.Uses.
func resolveBody(a Activity, reg *ActivityRegistry) (any, error) {
	switch a.Kind {
	case "break", "continue":
		return nil, nil
	}
	if a.Pipeline != nil {
		return Resolve(a.Pipeline, reg)
	}
	return reg.activityFunc(a.Name, a.Uses)
}
