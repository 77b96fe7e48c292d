// Package hookload resolves Builder.WithHooksFile's (path, exportName) pair
// into a hook source instance using the standard library plugin package.
// No third-party dependency in the example corpus offers a dynamic
// Go-native module loader: the closest analogues (compile-time plugin
// registries, code generators) resolve everything ahead of time rather
// than from a file path supplied at run time, so plugin.Open/Lookup is
// used directly here.
package hookload

import (
	"fmt"
	"plugin"
	"reflect"
)

// Config is the single argument object passed to a plugin's exported
// constructor, per spec.md §6's hook module contract ("a single argument
// object containing at least a debug callable").
type Config struct {
	Debug func(format string, args ...any)
}

// Load opens the plugin at path and resolves exportName into a hook
// source instance. The export may be:
//
//   - a plain value: used directly as the hook source;
//   - a func(Config) any: called once with cfg, result used as the hook source;
//   - a func(Config) (any, error): called once; a non-nil error is returned.
//
// Any other exported shape is reported as an error.
func Load(path, exportName string, debug func(format string, args ...any)) (any, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hookload: opening %s: %w", path, err)
	}

	sym, err := p.Lookup(exportName)
	if err != nil {
		return nil, fmt.Errorf("hookload: looking up %q in %s: %w", exportName, path, err)
	}

	v := reflect.ValueOf(sym)
	if v.Kind() != reflect.Func {
		return sym, nil
	}

	t := v.Type()
	if t.NumIn() != 1 {
		return nil, fmt.Errorf("hookload: export %q must be a value or a single-argument constructor", exportName)
	}

	cfg := Config{Debug: debug}
	cfgVal := reflect.ValueOf(cfg)
	if !cfgVal.Type().AssignableTo(t.In(0)) {
		return nil, fmt.Errorf("hookload: export %q constructor argument must accept hookload.Config", exportName)
	}

	out := v.Call([]reflect.Value{cfgVal})
	switch len(out) {
	case 1:
		return out[0].Interface(), nil
	case 2:
		if errVal := out[1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("hookload: export %q constructor must return (instance) or (instance, error)", exportName)
	}
}
