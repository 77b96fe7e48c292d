// Package flowerrors defines the typed error taxonomy shared by the
// flowkit runtime: configuration errors raised while a Builder is being
// assembled, structural errors raised the first time a Runner encounters a
// malformed activity, per-activity failures raised during a run, and the
// lifecycle failures a Piper surfaces around a batch of runs.
package flowerrors

import "fmt"

// Code identifies a well-known error category. ConfigError and
// StructuralError carry one in their Code field, so a caller can tell
// categories apart after a single errors.As to either type; no type here
// implements an Is method that matches on Code.
type Code string

const (
	CodeDuplicateActivity      Code = "DUPLICATE_ACTIVITY"
	CodeInvalidSignature       Code = "INVALID_SIGNATURE"
	CodeHooksAlreadyConfigured Code = "HOOKS_ALREADY_CONFIGURED"
	CodeSetupNotCallable       Code = "SETUP_NOT_CALLABLE"
	CodeUnknownActivityRef     Code = "UNKNOWN_ACTIVITY_REF"
	CodeAmbiguousKind          Code = "AMBIGUOUS_KIND"
	CodeControlFlowOutsideLoop Code = "CONTROL_FLOW_OUTSIDE_LOOP"
	CodeSplitIncomplete        Code = "SPLIT_INCOMPLETE"
	CodeUnknownBodyKind        Code = "UNKNOWN_BODY_KIND"
	CodeActivityFailure        Code = "ACTIVITY_FAILURE"
	CodeHookTimeout            Code = "HOOK_TIMEOUT"
	CodeHookFailure            Code = "HOOK_FAILURE"
	CodeSetupFailure           Code = "SETUP_FAILURE"
	CodeCleanupFailure         Code = "CLEANUP_FAILURE"
	CodeTerminalFailure        Code = "TERMINAL_FAILURE"
)

// ConfigError reports a mistake made while assembling a Builder: a
// duplicate activity name, a mismatched operand arity, or a hook source
// configured twice with two different targets.
type ConfigError struct {
	Code    Code
	Message string
	Context map[string]any
}

func newConfigError(code Code, message string, context map[string]any) *ConfigError {
	return &ConfigError{Code: code, Message: message, Context: context}
}

// NewDuplicateActivity reports an activity name registered twice in one Builder.
func NewDuplicateActivity(name string) *ConfigError {
	return newConfigError(CodeDuplicateActivity, "activity already registered", map[string]any{"name": name})
}

// NewInvalidSignature reports a Do* call whose operand shape does not match its kind.
func NewInvalidSignature(name, reason string) *ConfigError {
	return newConfigError(CodeInvalidSignature, reason, map[string]any{"name": name})
}

// NewHooksAlreadyConfigured reports WithHooks/WithHooksFile called twice with different targets.
func NewHooksAlreadyConfigured() *ConfigError {
	return newConfigError(CodeHooksAlreadyConfigured, "hook source already configured with a different target", nil)
}

// NewSetupNotCallable reports an action whose Setup method has the wrong shape.
func NewSetupNotCallable(reason string) *ConfigError {
	return newConfigError(CodeSetupNotCallable, reason, nil)
}

// NewUnknownActivityRef reports a document activity that names a splitter,
// predicate, or body reference absent from the supplied ActivityRegistry.
func NewUnknownActivityRef(activity, ref string) *ConfigError {
	return newConfigError(CodeUnknownActivityRef, "activity references an unregistered name", map[string]any{"activity": activity, "ref": ref})
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Context)
}

// StructuralError reports a malformed Pipeline discovered the first time the
// Runner reaches the offending activity: an ambiguous kind, a BREAK/CONTINUE
// outside any enclosing loop, a SPLIT missing its splitter or rejoiner, or a
// body value of a kind the Runner does not recognise.
type StructuralError struct {
	Code     Code
	Activity string
	Message  string
}

func newStructuralError(code Code, activity, message string) *StructuralError {
	return &StructuralError{Code: code, Activity: activity, Message: message}
}

// NewAmbiguousKind reports an activity tagged with more than one kind bit.
func NewAmbiguousKind(activity string) *StructuralError {
	return newStructuralError(CodeAmbiguousKind, activity, "activity carries more than one kind")
}

// NewControlFlowOutsideLoop reports a BREAK/CONTINUE reached with no enclosing loop.
func NewControlFlowOutsideLoop(activity string) *StructuralError {
	return newStructuralError(CodeControlFlowOutsideLoop, activity, "break/continue reached outside any enclosing loop")
}

// NewSplitIncomplete reports a SPLIT activity missing its splitter or rejoiner.
func NewSplitIncomplete(activity string) *StructuralError {
	return newStructuralError(CodeSplitIncomplete, activity, "split activity is missing a splitter or rejoiner")
}

// NewUnknownBodyKind reports a body value the Runner does not know how to execute.
func NewUnknownBodyKind(activity string) *StructuralError {
	return newStructuralError(CodeUnknownBodyKind, activity, "activity body is neither a callable nor a nested pipeline")
}

func (e *StructuralError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: activity %q: %s", e.Code, e.Activity, e.Message)
}

// ActivityFailure wraps any error raised by a body or predicate while a
// Pipeline runs. It carries the activity name and the owning pipeline id so
// failures can be traced back to where they occurred.
type ActivityFailure struct {
	Activity   string
	PipelineID string
	Cause      error
}

// NewActivityFailure wraps cause as an ActivityFailure for the named activity.
func NewActivityFailure(pipelineID, activity string, cause error) *ActivityFailure {
	return &ActivityFailure{Activity: activity, PipelineID: pipelineID, Cause: cause}
}

func (e *ActivityFailure) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: activity %q (pipeline %s): %v", CodeActivityFailure, e.Activity, e.PipelineID, e.Cause)
}

// Unwrap exposes the originating cause for errors.Is/errors.As.
func (e *ActivityFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// HookTimeout reports a hook call that did not return before its deadline.
// The in-flight call is not cancelled; only its result is discarded.
type HookTimeout struct {
	Hook string
}

// NewHookTimeout reports the named hook missing its dispatch deadline.
func NewHookTimeout(hook string) *HookTimeout {
	return &HookTimeout{Hook: hook}
}

func (e *HookTimeout) Error() string {
	return fmt.Sprintf("%s: hook %q did not return before the deadline", CodeHookTimeout, e.Hook)
}

// HookFailure wraps a panic/error raised by a hook method itself.
type HookFailure struct {
	Hook  string
	Cause error
}

// NewHookFailure wraps cause as a HookFailure raised by the named hook.
func NewHookFailure(hook string, cause error) *HookFailure {
	return &HookFailure{Hook: hook, Cause: cause}
}

func (e *HookFailure) Error() string {
	return fmt.Sprintf("%s: hook %q: %v", CodeHookFailure, e.Hook, e.Cause)
}

func (e *HookFailure) Unwrap() error { return e.Cause }

// SetupFailure reports the WorkerPool/Piper's setup hook failing before any
// item begins processing.
type SetupFailure struct {
	Cause error
}

func (e *SetupFailure) Error() string {
	return fmt.Sprintf("%s: %v", CodeSetupFailure, e.Cause)
}

func (e *SetupFailure) Unwrap() error { return e.Cause }

// CleanupFailure reports the Piper's cleanup hook failing after every worker
// has finished, even if every item settled successfully.
type CleanupFailure struct {
	Cause error
}

func (e *CleanupFailure) Error() string {
	return fmt.Sprintf("%s: %v", CodeCleanupFailure, e.Cause)
}

func (e *CleanupFailure) Unwrap() error { return e.Cause }

// TerminalFailure reports the `done` callback failing. When an
// ActivityFailure preceded it, both causes are preserved in order.
type TerminalFailure struct {
	Causes []error
}

// NewTerminalFailure aggregates a terminal error with any prior activity error.
func NewTerminalFailure(prior error, terminalErr error) *TerminalFailure {
	tf := &TerminalFailure{}
	if prior != nil {
		tf.Causes = append(tf.Causes, prior)
	}
	if terminalErr != nil {
		tf.Causes = append(tf.Causes, terminalErr)
	}
	return tf
}

func (e *TerminalFailure) Error() string {
	if e == nil || len(e.Causes) == 0 {
		return fmt.Sprintf("%s: done callback failed", CodeTerminalFailure)
	}
	return fmt.Sprintf("%s: %v", CodeTerminalFailure, e.Causes)
}

// Unwrap exposes every wrapped cause in order, per the errors.Unwrap() []error convention.
func (e *TerminalFailure) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.Causes
}
