package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) sendStudentUpdate(ctx context.Context, toEmail, subject string, data studentEmailData) error {
	content, err := renderEmailTemplate("student_update.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendApplicationReceivedEmail(ctx context.Context, toEmail, studentName string) error {
	return s.sendStudentUpdate(ctx, toEmail, subjectApplicationReceived, studentEmailData{
		baseEmailData: baseEmailData{Title: subjectApplicationReceived, Heading: "New application received"},
		StudentName:   studentName,
	})
}

func (s *SMTPSender) SendDocumentsRequestedEmail(ctx context.Context, toEmail, studentName, portalURL string) error {
	return s.sendStudentUpdate(ctx, toEmail, subjectDocumentsRequested, studentEmailData{
		baseEmailData: baseEmailData{Title: subjectDocumentsRequested, Heading: "Documents required"},
		StudentName:   studentName,
		PortalURL:     portalURL,
	})
}

func (s *SMTPSender) SendDocumentsRejectedEmail(ctx context.Context, toEmail, studentName, reason string) error {
	return s.sendStudentUpdate(ctx, toEmail, subjectDocumentsRejected, studentEmailData{
		baseEmailData: baseEmailData{Title: subjectDocumentsRejected, Heading: "Documents need corrections"},
		StudentName:   studentName,
		Reason:        reason,
	})
}

func (s *SMTPSender) SendApplicationRejectedEmail(ctx context.Context, toEmail, studentName, reason string) error {
	return s.sendStudentUpdate(ctx, toEmail, subjectApplicationRejected, studentEmailData{
		baseEmailData: baseEmailData{Title: subjectApplicationRejected, Heading: "Application decision"},
		StudentName:   studentName,
		Reason:        reason,
	})
}

func (s *SMTPSender) SendStageAdvancedEmail(ctx context.Context, toEmail, studentName, stageName, status string) error {
	return s.sendStudentUpdate(ctx, toEmail, subjectStageAdvanced, studentEmailData{
		baseEmailData: baseEmailData{Title: subjectStageAdvanced, Heading: "Application moved forward"},
		StudentName:   studentName,
		StageName:     stageName,
		Status:        status,
	})
}

func (s *SMTPSender) SendOfferLetterEmail(ctx context.Context, toEmail, studentName, university string) error {
	return s.sendStudentUpdate(ctx, toEmail, subjectOfferLetter, studentEmailData{
		baseEmailData: baseEmailData{Title: subjectOfferLetter, Heading: "Offer letter issued"},
		StudentName:   studentName,
		University:    university,
	})
}

func (s *SMTPSender) SendCommissionDueEmail(ctx context.Context, toEmail, studentName, amountFormatted string) error {
	return s.sendStudentUpdate(ctx, toEmail, subjectCommissionDue, studentEmailData{
		baseEmailData: baseEmailData{Title: subjectCommissionDue, Heading: "Commission payout ready"},
		StudentName:   studentName,
		Amount:        amountFormatted,
	})
}

func (s *SMTPSender) SendSLABreachEmail(ctx context.Context, toEmail, applicationID, status, idleFor string) error {
	content, err := renderEmailTemplate("sla_breach.html", slaEmailData{
		baseEmailData: baseEmailData{Title: subjectSLABreach, Heading: "Application stalled"},
		ApplicationID: applicationID,
		Status:        status,
		IdleFor:       idleFor,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectSLABreach, content)
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent)
}
