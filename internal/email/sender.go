// Package email delivers workflow notifications over SMTP.
package email

import (
	"context"

	"admissions_portal_backend/platform/config"
)

// Sender is the outbound email surface of the notification module. Every
// method corresponds to one notification template.
type Sender interface {
	SendApplicationReceivedEmail(ctx context.Context, toEmail, studentName string) error
	SendDocumentsRequestedEmail(ctx context.Context, toEmail, studentName, portalURL string) error
	SendDocumentsRejectedEmail(ctx context.Context, toEmail, studentName, reason string) error
	SendApplicationRejectedEmail(ctx context.Context, toEmail, studentName, reason string) error
	SendStageAdvancedEmail(ctx context.Context, toEmail, studentName, stageName, status string) error
	SendOfferLetterEmail(ctx context.Context, toEmail, studentName, university string) error
	SendCommissionDueEmail(ctx context.Context, toEmail, studentName, amountFormatted string) error
	SendSLABreachEmail(ctx context.Context, toEmail, applicationID, status, idleFor string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender satisfies Sender without delivering anything. Used when email
// is disabled or SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendApplicationReceivedEmail(ctx context.Context, toEmail, studentName string) error {
	return nil
}

func (NoopSender) SendDocumentsRequestedEmail(ctx context.Context, toEmail, studentName, portalURL string) error {
	return nil
}

func (NoopSender) SendDocumentsRejectedEmail(ctx context.Context, toEmail, studentName, reason string) error {
	return nil
}

func (NoopSender) SendApplicationRejectedEmail(ctx context.Context, toEmail, studentName, reason string) error {
	return nil
}

func (NoopSender) SendStageAdvancedEmail(ctx context.Context, toEmail, studentName, stageName, status string) error {
	return nil
}

func (NoopSender) SendOfferLetterEmail(ctx context.Context, toEmail, studentName, university string) error {
	return nil
}

func (NoopSender) SendCommissionDueEmail(ctx context.Context, toEmail, studentName, amountFormatted string) error {
	return nil
}

func (NoopSender) SendSLABreachEmail(ctx context.Context, toEmail, applicationID, status, idleFor string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

// NewSender selects the SMTP sender when email is enabled and configured,
// the noop sender otherwise.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
