package domain

import (
	"fmt"
	"time"
)

// EffectKind tags a side effect requested by stage composition. Effects are
// descriptions only; the service layer interprets them after the transition
// commits.
type EffectKind string

const (
	EffectGenerateDocument    EffectKind = "generate_document"
	EffectCalculateCommission EffectKind = "calculate_commission"
	EffectNotify              EffectKind = "notify"
)

// Effect is one requested side effect of a composed transition.
type Effect struct {
	Kind EffectKind

	// TemplateKey names the document or notification template.
	TemplateKey string

	// DocumentType is set for generate_document effects.
	DocumentType DocumentType

	// Audience is set for notify effects.
	Audience string

	// Reason carries the transition reason into notify effects so templates
	// like the rejection email can render it.
	Reason string
}

// NotifyEffects expands a status definition's notification triggers into
// notify effects, stamping each with the transition reason.
func NotifyEffects(def StatusDefinition, reason string) []Effect {
	effects := make([]Effect, 0, len(def.NotificationTriggers))
	for _, trigger := range def.NotificationTriggers {
		effects = append(effects, Effect{
			Kind:        EffectNotify,
			TemplateKey: trigger.TemplateKey,
			Audience:    trigger.Audience,
			Reason:      reason,
		})
	}
	return effects
}

// Change is the full result of composing one transition: the resulting
// (stage, status), the recomputed waiting-on fields, and the single history
// entry to append. Field updates carried in the aux data (arrival date,
// tracking number) ride along so the caller persists everything atomically.
type Change struct {
	Stage      Stage
	Status     string
	NextActor  Actor
	NextAction string
	Terminal   bool

	ArrivalDate    string
	TrackingNumber string

	Entry HistoryEntry
}

// completion describes a cross-stage edge: entering the key status completes
// its stage and lands the application on the next stage's entry status.
type completion struct {
	stage   Stage
	status  string
	effects []Effect
}

// stageCompletions is the only place cross-stage edges exist. Every other
// transition stays inside its stage sub-graph.
var stageCompletions = map[registryKey]completion{
	{StageIntake, StatusApprovedStage1}: {
		stage:  StageUniversity,
		status: StatusSentToUniversity,
	},
	{StageUniversity, StatusOfferLetterIssued}: {
		stage:  StageVisa,
		status: StatusWaitingVisaPayment,
		effects: []Effect{
			{Kind: EffectGenerateDocument, TemplateKey: "offer_letter", DocumentType: DocOfferLetter},
			{Kind: EffectGenerateDocument, TemplateKey: "visa_payment_request", DocumentType: DocPaymentRequest},
		},
	},
	{StageVisa, StatusVisaIssued}: {
		stage:  StageArrival,
		status: StatusArrivalDatePlanning,
	},
	{StageArrival, StatusEnrollmentConfirmed}: {
		stage:   StageCommission,
		status:  StatusCommissionPending,
		effects: []Effect{{Kind: EffectCalculateCommission, TemplateKey: "commission_due"}},
	},
}

// StageComposer resolves a validated target status into the final
// (stage, status) of the record, folding stage completion into the same
// transition so callers never observe an intermediate completion status.
type StageComposer struct {
	reg *Registry
}

// NewStageComposer creates a composer over the given registry.
func NewStageComposer(reg *Registry) *StageComposer {
	return &StageComposer{reg: reg}
}

// Compose is pure: it reads the application and returns the change and
// effects without mutating anything. The target must already have passed
// authority and rule checks; an unknown target here is a configuration
// error.
func (c *StageComposer) Compose(app *Application, actor Actor, target string, aux AuxData, now time.Time) (Change, []Effect, error) {
	if _, ok := c.reg.Lookup(app.Stage, target); !ok {
		return Change{}, nil, fmt.Errorf("compose: unknown status %q in stage %d", target, app.Stage)
	}

	stage, status := app.Stage, target
	var effects []Effect

	if comp, ok := stageCompletions[registryKey{stage: stage, status: status}]; ok {
		stage, status = comp.stage, comp.status
		effects = append(effects, comp.effects...)
	}

	def, ok := c.reg.Lookup(stage, status)
	if !ok {
		return Change{}, nil, fmt.Errorf("compose: completion target (%d, %s) is not a registry key", stage, status)
	}

	effects = append(effects, NotifyEffects(def, aux.Reason)...)

	change := Change{
		Stage:      stage,
		Status:     status,
		NextActor:  def.WaitingOn,
		NextAction: def.NextAction,
		Terminal:   def.Terminal,

		ArrivalDate:    aux.ArrivalDate,
		TrackingNumber: aux.TrackingNumber,

		// The history entry records the resulting pair. When composition
		// folds a completion status into the next stage's entry status, the
		// intermediate pair is never written anywhere.
		Entry: HistoryEntry{
			Stage:     stage,
			Status:    status,
			Actor:     actor,
			Reason:    aux.Reason,
			Notes:     aux.Notes,
			Documents: aux.DocumentNames,
			Timestamp: now,
		},
	}

	return change, effects, nil
}

// ApplyChange writes a composed change onto the application: status fields,
// version bump, history append, and the stage-entry clock when the stage
// advanced.
func ApplyChange(app *Application, change Change, now time.Time) {
	if change.Stage != app.Stage {
		app.StageEnteredAt = now
	}

	app.Stage = change.Stage
	app.Status = change.Status
	app.NextActor = change.NextActor
	app.NextAction = change.NextAction
	app.Terminal = change.Terminal

	if change.ArrivalDate != "" {
		app.ArrivalDate = change.ArrivalDate
	}
	if change.TrackingNumber != "" {
		app.TrackingNumber = change.TrackingNumber
	}

	app.StageHistory = append(app.StageHistory, change.Entry)
	app.Version++
	app.UpdatedAt = now
}
