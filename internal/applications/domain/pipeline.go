package domain

import (
	"fmt"
	"sort"
	"time"
)

// Pipeline evaluates a candidate transition against the rule catalog.
// The rule set is built once at construction and never mutated; rules are
// run in descending priority order.
type Pipeline struct {
	reg      *Registry
	auth     *AuthorityChecker
	rules    []Rule
	disabled func(ruleID string) bool

	// slaIdleThreshold is how long a high-priority application may sit in
	// one stage before the SLA rule raises a warning.
	slaIdleThreshold time.Duration
}

// PipelineOption customizes pipeline construction.
type PipelineOption func(*Pipeline)

// WithDisabledRules installs a predicate that suppresses individual rules
// at evaluation time without mutating the rule set.
func WithDisabledRules(disabled func(ruleID string) bool) PipelineOption {
	return func(p *Pipeline) { p.disabled = disabled }
}

// WithSLAIdleThreshold overrides the default idle threshold for the SLA rule.
func WithSLAIdleThreshold(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.slaIdleThreshold = d }
}

// WithExtraRules appends additional rules to the canonical catalog.
func WithExtraRules(rules ...Rule) PipelineOption {
	return func(p *Pipeline) { p.rules = append(p.rules, rules...) }
}

const defaultSLAIdleThreshold = 72 * time.Hour

// NewPipeline builds the canonical rule catalog over the given registry.
func NewPipeline(reg *Registry, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		reg:              reg,
		auth:             NewAuthorityChecker(reg),
		slaIdleThreshold: defaultSLAIdleThreshold,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.rules = append(p.rules,
		&authorityRule{auth: p.auth},
		&duplicateStatusRule{},
		&requiredReasonRule{},
		&requiredDocumentsRule{},
		&requiredConfirmationRule{},
		&dateFormatRule{},
		&receiptSchemaRule{},
		&trackingNumberRule{},
		&filenameSanityRule{},
		&sequentialStatusRule{},
		&stageConsistencyRule{},
		&slaWarningRule{idleThreshold: p.slaIdleThreshold},
	)

	// Descending priority; stable so equal-priority rules keep catalog order.
	sort.SliceStable(p.rules, func(i, j int) bool {
		return p.rules[i].Priority() > p.rules[j].Priority()
	})

	return p
}

// Evaluate runs every applicable rule against the candidate transition and
// merges the results. A failing validation rule at or above CriticalPriority
// stops further evaluation; warnings collected up to that point survive.
// A panicking rule contributes a generic internal error for that rule only
// and does not abort the rest of the pipeline.
func (p *Pipeline) Evaluate(app *Application, actor Actor, target string, aux AuxData, now time.Time) Outcome {
	currentDef, ok := p.reg.Lookup(app.Stage, app.Status)
	if !ok {
		return Outcome{
			Errors:             []string{fmt.Sprintf("unknown status %q in stage %d", app.Status, app.Stage)},
			ConfigurationError: true,
		}
	}

	targetDef, targetKnown := p.reg.Lookup(app.Stage, target)

	ctx := RuleContext{
		App:         app,
		Actor:       actor,
		Target:      target,
		Aux:         aux,
		Now:         now,
		CurrentDef:  currentDef,
		TargetDef:   targetDef,
		TargetKnown: targetKnown,
	}

	var out Outcome
	for _, rule := range p.rules {
		if p.disabled != nil && p.disabled(rule.ID()) {
			continue
		}
		if !rule.AppliesTo(ctx) {
			continue
		}

		result, panicked := p.evaluateRule(rule, ctx)
		if panicked {
			out.ConfigurationError = true
		}

		out.Errors = append(out.Errors, result.Errors...)
		out.Warnings = append(out.Warnings, result.Warnings...)
		out.Actions = append(out.Actions, result.Actions...)

		if len(result.Errors) > 0 && rule.Type() == RuleTypeValidation && rule.Priority() >= CriticalPriority {
			break
		}
	}

	out.CanProceed = len(out.Errors) == 0
	return out
}

// evaluateRule runs one rule with panic isolation.
func (p *Pipeline) evaluateRule(rule Rule, ctx RuleContext) (result RuleResult, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			result = Fail(fmt.Sprintf("internal error in rule %q", rule.ID()))
			panicked = true
		}
	}()
	return rule.Evaluate(ctx), false
}
