package domain

// NotificationTrigger names an outbound notification attached to a status.
// The notification module resolves the audience and template; the registry
// only declares that the notification exists.
type NotificationTrigger struct {
	Audience    string
	TemplateKey string
}

// StatusDefinition is one row of the status registry, keyed by (stage, status).
// It is pure state-machine data: authority, structural flags, and behavioral
// metadata. Presentation copy lives outside the domain layer.
type StatusDefinition struct {
	Stage  Stage
	Status string

	// SetBy is the actor (or trigger) that produces this status.
	SetBy Actor

	// Transitions holds the per-actor target lists. An actor absent from the
	// map has no authority over this status at all.
	Transitions map[Actor][]string

	// Structural flags.
	Terminal             bool
	RequiresReason       bool
	RequiresConfirmation bool
	UploadStatus         bool
	ReviewStatus         bool
	PaymentStatus        bool

	// RequiresDate marks statuses that confirm a calendar date and therefore
	// need an ISO YYYY-MM-DD value in the transition aux data.
	RequiresDate bool

	// RequiresTracking marks immigration-submission and visa-issuance
	// statuses that need a tracking/reference string.
	RequiresTracking bool

	// RequiredDocuments lists document types that must already be recorded
	// on the application before this status can be entered.
	RequiredDocuments []DocumentType

	// WaitingOn and NextAction describe who the workflow is blocked on once
	// this status is reached, and which action key they should take.
	WaitingOn  Actor
	NextAction string

	// AutoProgressTo, when set, names a follow-up status the automation
	// engine applies without user action.
	AutoProgressTo string

	// NotificationTriggers are dispatched after this status is reached.
	NotificationTriggers []NotificationTrigger
}

// CanTransition reports whether the actor may move a record out of this
// status at all.
func (d StatusDefinition) CanTransition(actor Actor) bool {
	targets, ok := d.Transitions[actor]
	return ok && len(targets) > 0
}

// TargetsFor returns the actor's transition list. Empty for terminal rows
// and for actors without authority.
func (d StatusDefinition) TargetsFor(actor Actor) []string {
	return d.Transitions[actor]
}

// AllowsTarget reports whether the actor may move this status to target.
func (d StatusDefinition) AllowsTarget(actor Actor, target string) bool {
	for _, t := range d.Transitions[actor] {
		if t == target {
			return true
		}
	}
	return false
}
