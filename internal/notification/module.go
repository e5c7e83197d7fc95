// Package notification subscribes to workflow events and delivers emails.
// It inverts the dependency: the workflow core publishes events and never
// knows about email providers or templates. Delivery failures are logged,
// never propagated into the state machine.
package notification

import (
	"context"
	"fmt"

	"admissions_portal_backend/internal/email"
	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/internal/partners"
	"admissions_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// PartnerDirectory resolves partner contact details.
// Implemented by partners.Repository.
type PartnerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*partners.Partner, error)
}

// Config is the slice of configuration the notification module needs.
type Config interface {
	GetAppBaseURL() string
	GetAdminNotifyAddress() string
}

var stageNames = map[int]string{
	1: "Intake Review",
	2: "University Decision",
	3: "Visa Processing",
	4: "Arrival",
	5: "Commission Payout",
}

// Module wires event subscriptions to the email sender.
type Module struct {
	sender email.Sender
	dir    PartnerDirectory
	cfg    Config
	log    *logger.Logger
}

// NewModule creates the notification module and subscribes it to the bus.
func NewModule(bus events.Bus, sender email.Sender, dir PartnerDirectory, cfg Config, log *logger.Logger) *Module {
	m := &Module{sender: sender, dir: dir, cfg: cfg, log: log}

	bus.Subscribe(events.NotificationRequested{}.EventName(), events.HandlerFunc(m.handleNotificationRequested))
	bus.Subscribe(events.StageAdvanced{}.EventName(), events.HandlerFunc(m.handleStageAdvanced))
	bus.Subscribe(events.SLABreached{}.EventName(), events.HandlerFunc(m.handleSLABreached))
	bus.Subscribe(events.CommissionDue{}.EventName(), events.HandlerFunc(m.handleCommissionDue))

	return m
}

func (m *Module) partnerEmail(ctx context.Context, partnerID uuid.UUID) (string, error) {
	if partnerID == uuid.Nil {
		return "", fmt.Errorf("no partner on record")
	}
	partner, err := m.dir.GetByID(ctx, partnerID)
	if err != nil {
		return "", err
	}
	return partner.Email, nil
}

func (m *Module) handleNotificationRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(events.NotificationRequested)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	var toEmail string
	switch e.Audience {
	case "admin":
		toEmail = m.cfg.GetAdminNotifyAddress()
	case "partner":
		addr, err := m.partnerEmail(ctx, e.PartnerID)
		if err != nil {
			m.log.Warn("cannot resolve partner for notification",
				"application_id", e.ApplicationID, "template", e.TemplateKey, "error", err)
			return nil
		}
		toEmail = addr
	default:
		m.log.Warn("unknown notification audience", "audience", e.Audience, "template", e.TemplateKey)
		return nil
	}
	if toEmail == "" {
		return nil
	}

	var err error
	switch e.TemplateKey {
	case "application_received":
		err = m.sender.SendApplicationReceivedEmail(ctx, toEmail, e.StudentName)
	case "documents_requested":
		err = m.sender.SendDocumentsRequestedEmail(ctx, toEmail, e.StudentName, m.cfg.GetAppBaseURL())
	case "documents_rejected":
		err = m.sender.SendDocumentsRejectedEmail(ctx, toEmail, e.StudentName, e.Reason)
	case "application_rejected":
		err = m.sender.SendApplicationRejectedEmail(ctx, toEmail, e.StudentName, e.Reason)
	case "offer_letter_issued":
		err = m.sender.SendOfferLetterEmail(ctx, toEmail, e.StudentName, "")
	default:
		err = m.sender.SendStageAdvancedEmail(ctx, toEmail, e.StudentName, stageNames[e.Stage], e.Status)
	}

	if err != nil {
		m.log.Error("notification delivery failed",
			"application_id", e.ApplicationID, "template", e.TemplateKey, "error", err)
	}
	return nil
}

func (m *Module) handleStageAdvanced(ctx context.Context, event events.Event) error {
	e, ok := event.(events.StageAdvanced)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	toEmail, err := m.partnerEmail(ctx, e.PartnerID)
	if err != nil {
		m.log.Warn("cannot resolve partner for stage notice",
			"application_id", e.ApplicationID, "error", err)
		return nil
	}

	if err := m.sender.SendStageAdvancedEmail(ctx, toEmail, "", stageNames[e.ToStage], e.EntryStatus); err != nil {
		m.log.Error("stage notice delivery failed", "application_id", e.ApplicationID, "error", err)
	}
	return nil
}

func (m *Module) handleSLABreached(ctx context.Context, event events.Event) error {
	e, ok := event.(events.SLABreached)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	toEmail := m.cfg.GetAdminNotifyAddress()
	if toEmail == "" {
		return nil
	}

	if err := m.sender.SendSLABreachEmail(ctx, toEmail, e.ApplicationID.String(), e.Status, e.IdleFor); err != nil {
		m.log.Error("sla notice delivery failed", "application_id", e.ApplicationID, "error", err)
	}
	return nil
}

func (m *Module) handleCommissionDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CommissionDue)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	toEmail, err := m.partnerEmail(ctx, e.PartnerID)
	if err != nil {
		m.log.Warn("cannot resolve partner for commission notice",
			"application_id", e.ApplicationID, "error", err)
		return nil
	}

	amount := fmt.Sprintf("%.2f %s", float64(e.AmountCents)/100, e.Currency)
	if err := m.sender.SendCommissionDueEmail(ctx, toEmail, "", amount); err != nil {
		m.log.Error("commission notice delivery failed", "application_id", e.ApplicationID, "error", err)
	}
	return nil
}
