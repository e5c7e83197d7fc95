package domain

import "time"

// RuleType determines ordering semantics in the pipeline: only failing
// validation rules at or above CriticalPriority short-circuit evaluation.
type RuleType string

const (
	RuleTypeValidation   RuleType = "validation"
	RuleTypePermission   RuleType = "permission"
	RuleTypeNotification RuleType = "notification"
)

// CriticalPriority is the threshold above which a failing validation rule
// stops the pipeline. Warnings collected before the stop are still surfaced.
const CriticalPriority = 100

// RuleContext is the evaluation context of one candidate transition. The
// application is read-only for rules.
type RuleContext struct {
	App    *Application
	Actor  Actor
	Target string
	Aux    AuxData
	Now    time.Time

	// CurrentDef is the registry row for the application's current
	// (stage, status). TargetDef is the row for (stage, target);
	// TargetKnown is false when the target is not a registry key.
	CurrentDef  StatusDefinition
	TargetDef   StatusDefinition
	TargetKnown bool
}

// Action is a side effect requested by a rule, executed by the caller after
// a successful evaluation (e.g. scheduling a follow-up notification).
type Action struct {
	Name   string
	Params map[string]string
}

// RuleResult is the outcome of a single rule.
type RuleResult struct {
	Errors   []string
	Warnings []string
	Actions  []Action
}

// OK is the empty, passing result.
func OK() RuleResult { return RuleResult{} }

// Fail returns a result with a single error.
func Fail(msg string) RuleResult { return RuleResult{Errors: []string{msg}} }

// Warn returns a result with a single warning.
func Warn(msg string) RuleResult { return RuleResult{Warnings: []string{msg}} }

// Rule is a single independent business-rule check. Rules are immutable
// after startup; disabling one is a runtime predicate on the pipeline, not
// a mutation of the rule set.
type Rule interface {
	ID() string
	Type() RuleType
	Priority() int
	AppliesTo(ctx RuleContext) bool
	Evaluate(ctx RuleContext) RuleResult
}

// Outcome is the merged result of a pipeline run.
type Outcome struct {
	CanProceed bool
	Errors     []string
	Warnings   []string
	Actions    []Action

	// ConfigurationError marks outcomes caused by registry lookup misses or
	// rule panics rather than bad user input. These must be logged as
	// system bugs, distinctly from validation failures.
	ConfigurationError bool
}
