package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/nilecommerce/admin-service/pkg/config"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

const fromName = "Nile Admin"

var errAPIKeyRequired = errors.New("sendgrid api key is required")

// Mailer delivers transactional email to staff accounts.
type Mailer interface {
	SendWelcome(ctx context.Context, to, firstName, verificationToken string) error
	SendVerification(ctx context.Context, to, firstName, verificationToken string) error
	SendPasswordReset(ctx context.Context, to, firstName, resetToken string) error
}

// SendgridMailer implements Mailer on top of the SendGrid v3 API.
type SendgridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	baseURL   string
	templates map[string]*template.Template
	logger    *logger.Logger
}

// NewSendgrid builds a mailer from config. The API key must be set; use
// NewNoop in environments without credentials.
func NewSendgrid(cfg config.SendgridConfig, logg *logger.Logger) (*SendgridMailer, error) {
	if cfg.APIKey == "" {
		return nil, errAPIKeyRequired
	}
	return &SendgridMailer{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.DefaultFrom,
		baseURL:   cfg.AppBaseURL,
		templates: parseTemplates(),
		logger:    logg,
	}, nil
}

func (m *SendgridMailer) SendWelcome(ctx context.Context, to, firstName, verificationToken string) error {
	return m.send(ctx, to, "Welcome to Nile Admin", "welcome", map[string]any{
		"FirstName": firstName,
		"VerifyURL": fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, verificationToken),
	})
}

func (m *SendgridMailer) SendVerification(ctx context.Context, to, firstName, verificationToken string) error {
	return m.send(ctx, to, "Verify your email address", "verification", map[string]any{
		"FirstName": firstName,
		"VerifyURL": fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, verificationToken),
	})
}

func (m *SendgridMailer) SendPasswordReset(ctx context.Context, to, firstName, resetToken string) error {
	return m.send(ctx, to, "Reset your password", "password_reset", map[string]any{
		"FirstName": firstName,
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, resetToken),
	})
}

func (m *SendgridMailer) send(ctx context.Context, to, subject, templateName string, data map[string]any) error {
	tmpl, ok := m.templates[templateName]
	if !ok {
		return fmt.Errorf("email template %q not found", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email template %q: %w", templateName, err)
	}

	from := sgmail.NewEmail(fromName, m.fromEmail)
	recipient := sgmail.NewEmail("", to)
	message := sgmail.NewSingleEmail(from, subject, recipient, "", body.String())

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	if m.logger != nil {
		m.logger.Info(m.logger.WithFields(ctx, map[string]any{
			"template": templateName,
		}), "email delivered")
	}
	return nil
}

// NoopMailer logs instead of sending. Used in development and tests.
type NoopMailer struct {
	logger *logger.Logger
}

// NewNoop returns a mailer that only logs deliveries.
func NewNoop(logg *logger.Logger) *NoopMailer {
	return &NoopMailer{logger: logg}
}

func (m *NoopMailer) SendWelcome(ctx context.Context, to, firstName, verificationToken string) error {
	return m.log(ctx, "welcome")
}

func (m *NoopMailer) SendVerification(ctx context.Context, to, firstName, verificationToken string) error {
	return m.log(ctx, "verification")
}

func (m *NoopMailer) SendPasswordReset(ctx context.Context, to, firstName, resetToken string) error {
	return m.log(ctx, "password_reset")
}

func (m *NoopMailer) log(ctx context.Context, templateName string) error {
	if m.logger != nil {
		m.logger.Info(m.logger.WithField(ctx, "template", templateName), "email suppressed (noop mailer)")
	}
	return nil
}
