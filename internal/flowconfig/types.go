// Package flowconfig loads pipeline documents from YAML and assembles them
// into a flowkit.Builder by resolving each activity's named references
// against an ActivityRegistry supplied by the host program.
package flowconfig

// Document represents a complete pipeline definition as authored by hand or
// generated by a tool. It mirrors the shape of flowkit.Builder: a flat list
// of activities plus the settings and hook wiring that apply to all of them.
type Document struct {
	Version     string     `yaml:"version" validate:"required,semver"`
	Name        string     `yaml:"name" validate:"required,min=1,max=100"`
	Description string     `yaml:"description,omitempty"`
	Settings    Settings   `yaml:"settings,omitempty"`
	Hooks       *HooksRef  `yaml:"hooks,omitempty" validate:"omitempty"`
	Activities  []Activity `yaml:"activities" validate:"required,min=1,dive"`
	Done        string     `yaml:"done,omitempty" validate:"omitempty,activity_ref"`
}

// Settings holds the document-level execution parameters that become a
// flowkit.Settings value and a Piper pool size.
type Settings struct {
	PoolSize        int `yaml:"pool_size,omitempty" validate:"omitempty,min=1,max=256"`
	HookTimeoutMillis int `yaml:"hook_timeout_ms,omitempty" validate:"omitempty,min=1,max=300000"`
}

// HooksRef points at a compiled hook plugin loaded through internal/hookload,
// mirroring Builder.WithHooksFile.
type HooksRef struct {
	Path       string `yaml:"path" validate:"required"`
	ExportName string `yaml:"export,omitempty"`
}

// Activity describes one entry in the pipeline. Kind drives which of the
// optional fields are required; see validateKindShape.
type Activity struct {
	Name string `yaml:"name" validate:"required,activity_name"`
	Kind string `yaml:"kind" validate:"required,oneof=once while until if split break continue"`

	// Predicate names a PredicateFunc registered under that name. Required
	// for while/until/if/break/continue.
	Predicate string `yaml:"predicate,omitempty" validate:"omitempty,activity_ref"`

	// Splitter and Rejoiner name the corresponding funcs. Required for split.
	Splitter string `yaml:"splitter,omitempty" validate:"omitempty,activity_ref"`
	Rejoiner string `yaml:"rejoiner,omitempty" validate:"omitempty,activity_ref"`

	// Uses names an ActivityFunc registered under that name. Mutually
	// exclusive with Pipeline; required unless Pipeline is set and the kind
	// admits a body at all (break/continue admit neither).
	Uses string `yaml:"uses,omitempty" validate:"omitempty,activity_ref"`

	// Pipeline nests another document inline, becoming a *flowkit.Pipeline
	// body the same way a nested *flowkit.Builder would.
	Pipeline *Document `yaml:"pipeline,omitempty" validate:"omitempty"`
}
