package flowkit

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rgalloway/flowkit/pkg/flowerrors"
)

// actionTag tracks whether a given action's Setup has already run, so that
// Build() on a Builder sharing an action with an already-built sibling is a
// no-op (spec.md §4.2's "non-null tag" idempotence rule). Keyed by action
// identity rather than stored on the action itself, since the action is an
// arbitrary user type the core must not require an embedding contract from.
var (
	actionTagsMu sync.Mutex
	actionTags   = map[any]*actionTag{}
)

type actionTag struct {
	mu  sync.Mutex
	ran bool
}

// markIfUnset reports true (and marks the tag) the first time it is
// called for a given action; every subsequent call returns false.
func (t *actionTag) markIfUnset() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ran {
		return false
	}
	t.ran = true
	return true
}

func tagFor(action any) (tag *actionTag, trackable bool) {
	defer func() {
		// A non-comparable action (slice/map/func without pointer indirection)
		// cannot key a map; treat it as always-run-once-per-Builder instead of
		// panicking, which is the safest fallback for an edge case the spec
		// does not anticipate (actions are expected to be pointer-receiver
		// stateful objects).
		if r := recover(); r != nil {
			tag, trackable = &actionTag{}, false
		}
	}()
	actionTagsMu.Lock()
	defer actionTagsMu.Unlock()
	if t, ok := actionTags[action]; ok {
		return t, true
	}
	t := &actionTag{}
	actionTags[action] = t
	return t, true
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// invokeActionSetup calls action.Setup(b) via reflection, exactly once per
// action identity, if the action defines a method named Setup. A Setup
// method with any signature other than func(*Builder) error is reported as
// flowerrors.SetupNotCallable rather than silently ignored or panicking.
func invokeActionSetup(b *Builder) error {
	if b.action == nil {
		return nil
	}
	tag, _ := tagFor(b.action)
	if !tag.markIfUnset() {
		return nil
	}

	v := reflect.ValueOf(b.action)
	m := v.MethodByName("Setup")
	if !m.IsValid() {
		return nil
	}

	t := m.Type()
	if t.NumIn() != 1 || t.In(0) != reflect.TypeOf(b) || t.NumOut() != 1 || !t.Out(0).Implements(errType) {
		return flowerrors.NewSetupNotCallable(fmt.Sprintf("action %T's Setup method must have signature func(*flowkit.Builder) error", b.action))
	}

	out := m.Call([]reflect.Value{reflect.ValueOf(b)})
	if errVal := out[0]; !errVal.IsNil() {
		return errVal.Interface().(error)
	}
	return nil
}
