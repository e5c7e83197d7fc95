package domain

import (
	"fmt"
	"time"
)

// Automation event names. Automation rules are keyed by these.
const (
	EventApplicationSubmitted = "application_submitted"
	EventDocumentsUploaded    = "documents_uploaded"
	EventStatusChanged        = "status_changed"
	EventEffectCompleted      = "effect_completed"
	EventSchedule             = "schedule"
)

// maxAutoProgressDepth bounds how many auto-progress hops one event may
// trigger, so a misconfigured registry cycle cannot loop forever.
const maxAutoProgressDepth = 8

// AutomationEvent is the trigger input of an automation run.
type AutomationEvent struct {
	Name     string
	Metadata map[string]string
}

// AutomationStep records one status mutation applied by a rule.
type AutomationStep struct {
	Rule   string
	Stage  Stage
	Status string
}

// AutomationOutcome is the merged result of one automation run. Effects
// carries the notification triggers of every status the run landed on, so
// automation moves announce themselves the same way user transitions do.
type AutomationOutcome struct {
	Changed bool
	Steps   []AutomationStep
	Actions []Action
	Effects []Effect
}

// AutomationRule reacts to a named event. Rules are trusted: they mutate the
// application directly and bypass the validation pipeline. Multiple rules on
// the same event run in catalog order, each seeing the previous rule's
// mutations.
type AutomationRule interface {
	Name() string
	Event() string
	Matches(app *Application, ev AutomationEvent) bool
	Apply(app *Application, ev AutomationEvent, now time.Time) ([]AutomationStep, []Action)
}

// AutomationEngine holds the rule catalog, keyed by event name.
type AutomationEngine struct {
	reg   *Registry
	rules map[string][]AutomationRule
}

// NewAutomationEngine builds the canonical automation catalog.
func NewAutomationEngine(reg *Registry, idleThreshold time.Duration) *AutomationEngine {
	e := &AutomationEngine{
		reg:   reg,
		rules: make(map[string][]AutomationRule),
	}

	e.register(&intakeStartRule{reg: reg})
	e.register(&documentsCompleteRule{reg: reg})
	e.register(&autoProgressRule{reg: reg})
	e.register(&slaEscalationRule{idleThreshold: idleThreshold})

	return e
}

func (e *AutomationEngine) register(rule AutomationRule) {
	e.rules[rule.Event()] = append(e.rules[rule.Event()], rule)
}

// Process runs every matching rule for the event against the application,
// mutating it in place. The caller persists the result through the versioned
// commit path, so concurrent automation and user transitions cannot clobber
// each other.
func (e *AutomationEngine) Process(app *Application, ev AutomationEvent, now time.Time) AutomationOutcome {
	var out AutomationOutcome

	for _, rule := range e.rules[ev.Name] {
		if !rule.Matches(app, ev) {
			continue
		}

		steps, actions := rule.Apply(app, ev, now)
		out.Steps = append(out.Steps, steps...)
		out.Actions = append(out.Actions, actions...)
	}

	for _, step := range out.Steps {
		def, ok := e.reg.Lookup(step.Stage, step.Status)
		if !ok {
			continue
		}
		out.Effects = append(out.Effects, NotifyEffects(def, "")...)
	}

	out.Changed = len(out.Steps) > 0
	return out
}

// move sets the application onto (stage, status) and refreshes the
// waiting-on fields from the registry. It appends the system history entry
// and bumps the version; persistence happens at the caller.
func move(reg *Registry, app *Application, ruleName, status string, now time.Time) (AutomationStep, bool) {
	def, ok := reg.Lookup(app.Stage, status)
	if !ok {
		return AutomationStep{}, false
	}

	app.Status = status
	app.NextActor = def.WaitingOn
	app.NextAction = def.NextAction
	app.StageHistory = append(app.StageHistory, HistoryEntry{
		Stage:     app.Stage,
		Status:    status,
		Actor:     ActorSystem,
		Notes:     fmt.Sprintf("automation: %s", ruleName),
		Timestamp: now,
	})
	app.Version++
	app.UpdatedAt = now

	return AutomationStep{Rule: ruleName, Stage: app.Stage, Status: status}, true
}

// intakeStartRule moves a freshly submitted application from the entry
// status to documents_required, putting the ball in the partner's court.
type intakeStartRule struct {
	reg *Registry
}

func (r *intakeStartRule) Name() string  { return "intake_start" }
func (r *intakeStartRule) Event() string { return EventApplicationSubmitted }

func (r *intakeStartRule) Matches(app *Application, _ AutomationEvent) bool {
	return app.Stage == StageIntake && app.Status == StatusNewApplication
}

func (r *intakeStartRule) Apply(app *Application, _ AutomationEvent, now time.Time) ([]AutomationStep, []Action) {
	step, ok := move(r.reg, app, r.Name(), StatusDocumentsRequired, now)
	if !ok {
		return nil, nil
	}
	return []AutomationStep{step}, nil
}

// documentsCompleteRule advances upload statuses once the required document
// set is on record: documents_required to documents_submitted in stage 1,
// additional_documents_required to additional_documents_submitted in stage 2.
type documentsCompleteRule struct {
	reg *Registry
}

func (r *documentsCompleteRule) Name() string  { return "documents_complete" }
func (r *documentsCompleteRule) Event() string { return EventDocumentsUploaded }

func (r *documentsCompleteRule) Matches(app *Application, _ AutomationEvent) bool {
	switch {
	case app.Stage == StageIntake && app.Status == StatusDocumentsRequired:
		submitted, ok := r.reg.Lookup(StageIntake, StatusDocumentsSubmitted)
		return ok && len(app.MissingDocuments(submitted.RequiredDocuments)) == 0
	case app.Stage == StageUniversity && app.Status == StatusAdditionalDocsRequired:
		return len(app.Documents) > 0
	}
	return false
}

func (r *documentsCompleteRule) Apply(app *Application, _ AutomationEvent, now time.Time) ([]AutomationStep, []Action) {
	target := StatusDocumentsSubmitted
	if app.Stage == StageUniversity {
		target = StatusAdditionalDocsSubmitted
	}

	step, ok := move(r.reg, app, r.Name(), target, now)
	if !ok {
		return nil, nil
	}
	return []AutomationStep{step}, nil
}

// autoProgressRule follows the registry's AutoProgressTo chain, bounded by
// maxAutoProgressDepth. It is keyed on effect_completed rather than
// status_changed: a status that waits on a collaborator only advances once
// the collaborator reports back, never in the commit that entered it.
type autoProgressRule struct {
	reg *Registry
}

func (r *autoProgressRule) Name() string  { return "auto_progress" }
func (r *autoProgressRule) Event() string { return EventEffectCompleted }

func (r *autoProgressRule) Matches(app *Application, _ AutomationEvent) bool {
	def, ok := r.reg.Lookup(app.Stage, app.Status)
	return ok && def.AutoProgressTo != ""
}

func (r *autoProgressRule) Apply(app *Application, _ AutomationEvent, now time.Time) ([]AutomationStep, []Action) {
	var steps []AutomationStep

	for depth := 0; depth < maxAutoProgressDepth; depth++ {
		def, ok := r.reg.Lookup(app.Stage, app.Status)
		if !ok || def.AutoProgressTo == "" {
			break
		}

		step, moved := move(r.reg, app, r.Name(), def.AutoProgressTo, now)
		if !moved {
			break
		}
		steps = append(steps, step)
	}

	return steps, nil
}

// slaEscalationRule reacts to the scheduler's periodic scan: high-priority
// applications idle past the threshold get an admin notification action. It
// never mutates status.
type slaEscalationRule struct {
	idleThreshold time.Duration
}

func (r *slaEscalationRule) Name() string  { return "sla_escalation" }
func (r *slaEscalationRule) Event() string { return EventSchedule }

func (r *slaEscalationRule) Matches(app *Application, _ AutomationEvent) bool {
	return app.Priority == PriorityHigh
}

func (r *slaEscalationRule) Apply(app *Application, _ AutomationEvent, now time.Time) ([]AutomationStep, []Action) {
	idle := app.IdleIn(now)
	if idle <= r.idleThreshold {
		return nil, nil
	}

	return nil, []Action{{
		Name: "notify_sla_breach",
		Params: map[string]string{
			"application_id": app.ID.String(),
			"stage":          fmt.Sprintf("%d", app.Stage),
			"status":         app.Status,
			"idle":           idle.Round(time.Hour).String(),
		},
	}}
}
