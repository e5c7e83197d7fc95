// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"admissions_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Application Workflow Events
// =============================================================================

// ApplicationCreated is published when a partner submits a new application.
type ApplicationCreated struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	PartnerID     uuid.UUID `json:"partnerId"`
	StudentName   string    `json:"studentName"`
	Program       string    `json:"program"`
	University    string    `json:"university"`
}

func (e ApplicationCreated) EventName() string { return "applications.created" }

// StatusChanged is published after every committed transition, including
// automation moves. OldStage/OldStatus are the pair before the transition.
type StatusChanged struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	PartnerID     uuid.UUID `json:"partnerId"`
	Actor         string    `json:"actor"`
	OldStage      int       `json:"oldStage"`
	OldStatus     string    `json:"oldStatus"`
	NewStage      int       `json:"newStage"`
	NewStatus     string    `json:"newStatus"`
	Reason        string    `json:"reason,omitempty"`
}

func (e StatusChanged) EventName() string { return "applications.status.changed" }

// StageAdvanced is published when a transition crosses a stage boundary.
// It always accompanies a StatusChanged event for the same transition.
type StageAdvanced struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	PartnerID     uuid.UUID `json:"partnerId"`
	FromStage     int       `json:"fromStage"`
	ToStage       int       `json:"toStage"`
	EntryStatus   string    `json:"entryStatus"`
}

func (e StageAdvanced) EventName() string { return "applications.stage.advanced" }

// TransitionDenied is published when an attempted transition fails authority
// or validation checks. Consumed by the audit trail, never by automation.
type TransitionDenied struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	Actor         string    `json:"actor"`
	FromStatus    string    `json:"fromStatus"`
	Target        string    `json:"target"`
	DenialCode    string    `json:"denialCode"`
	Errors        []string  `json:"errors,omitempty"`
}

func (e TransitionDenied) EventName() string { return "applications.transition.denied" }

// DocumentUploaded is published when an upload is confirmed against an
// application. Triggers the documents_uploaded automation event.
type DocumentUploaded struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	DocumentID    uuid.UUID `json:"documentId"`
	DocumentType  string    `json:"documentType"`
	FileName      string    `json:"fileName"`
	FileKey       string    `json:"fileKey"`
	UploadedBy    string    `json:"uploadedBy"`
}

func (e DocumentUploaded) EventName() string { return "applications.document.uploaded" }

// DocumentGenerated is published when the workflow produces a document
// (offer letter, payment request) through the effect interpreter.
type DocumentGenerated struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	DocumentID    uuid.UUID `json:"documentId"`
	DocumentType  string    `json:"documentType"`
	TemplateKey   string    `json:"templateKey"`
	FileKey       string    `json:"fileKey"`
}

func (e DocumentGenerated) EventName() string { return "applications.document.generated" }

// =============================================================================
// Commission Events
// =============================================================================

// CommissionDue is published when an application enters the commission stage
// and the payout has been calculated.
type CommissionDue struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	PartnerID     uuid.UUID `json:"partnerId"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
}

func (e CommissionDue) EventName() string { return "commissions.due" }

// CommissionPaid is published when a commission payout is confirmed.
type CommissionPaid struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	PartnerID     uuid.UUID `json:"partnerId"`
	AmountCents   int64     `json:"amountCents"`
}

func (e CommissionPaid) EventName() string { return "commissions.paid" }

// =============================================================================
// Notification Events
// =============================================================================

// NotificationRequested is published by the effect interpreter for each
// notification trigger attached to a reached status.
type NotificationRequested struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	PartnerID     uuid.UUID `json:"partnerId"`
	Audience      string    `json:"audience"`
	TemplateKey   string    `json:"templateKey"`
	StudentName   string    `json:"studentName"`
	Stage         int       `json:"stage"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
}

func (e NotificationRequested) EventName() string { return "notification.requested" }

// SLABreached is published by the scheduler when a high-priority application
// has idled past the configured threshold.
type SLABreached struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	Stage         int       `json:"stage"`
	Status        string    `json:"status"`
	IdleFor       string    `json:"idleFor"`
}

func (e SLABreached) EventName() string { return "applications.sla.breached" }
