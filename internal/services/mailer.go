package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/config"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type Email struct {
	ToName  string
	ToEmail string
	Subject string
	Plain   string
	HTML    string
}

// Mailer delivers transactional email. Implementations wrap their provider
// failures in utils.ErrExternalServiceFailure.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// NewMailer picks the provider configured by MAIL_PROVIDER.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.MailProvider == config.MailProviderSMTP {
		return NewSMTPMailer(cfg)
	}
	return NewSendGridMailer(cfg)
}

// ---------------------------------------------------------------------
// SendGrid
// ---------------------------------------------------------------------

type SendGridMailer struct {
	client      *sendgrid.Client
	fromName    string
	fromEmail   string
	sandboxMode bool
}

func NewSendGridMailer(cfg *config.Config) *SendGridMailer {
	return &SendGridMailer{
		client:      sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName:    cfg.OrganizationName,
		fromEmail:   cfg.LDFlag_SendgridFromEmail,
		sandboxMode: cfg.LDFlag_SendgridSandboxMode,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Email) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Plain, msg.HTML)

	if m.sandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		message.MailSettings = ms
	}

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendgrid status %d: %s", utils.ErrExternalServiceFailure, resp.StatusCode, resp.Body)
	}
	return nil
}

// ---------------------------------------------------------------------
// SMTP
// ---------------------------------------------------------------------

type SMTPMailer struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		fromName:  cfg.OrganizationName,
		fromEmail: cfg.LDFlag_SendgridFromEmail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	message := buildSMTPMessage(m.fromName, m.fromEmail, msg)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(message) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: smtp: %v", utils.ErrExternalServiceFailure, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: smtp: %v", utils.ErrExternalServiceFailure, ctx.Err())
	}
}

func buildSMTPMessage(fromName, fromEmail string, msg Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", fromEmail, fromName)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.ToEmail, msg.ToName)
	} else {
		m.SetHeader("To", msg.ToEmail)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Plain)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}
