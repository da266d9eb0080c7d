package services

import (
	"context"
	"fmt"
	"vmp-callback/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// AlertMailer emails reconciliation gaps (missing product at callback
// time, exhausted stock, channel notification failures) to a designated
// operator address via Brevo. Strictly best-effort: errors are logged
// and swallowed.
type AlertMailer struct {
	client      *brevo.APIClient
	fromEmail   string
	alertEmail  string
	serviceName string
}

// NewAlertMailer creates a new alert mailer. Returns nil when no API
// key or alert address is configured; callers treat a nil mailer as
// alerts-disabled.
func NewAlertMailer(apiKey, fromEmail, alertEmail, serviceName string) *AlertMailer {
	if apiKey == "" || alertEmail == "" {
		return nil
	}

	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	return &AlertMailer{
		client:      brevo.NewAPIClient(cfg),
		fromEmail:   fromEmail,
		alertEmail:  alertEmail,
		serviceName: serviceName,
	}
}

// Alert sends one operator email.
func (m *AlertMailer) Alert(ctx context.Context, subject, body string) {
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  m.serviceName,
			Email: m.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: m.alertEmail},
		},
		Subject:     fmt.Sprintf("[%s] %s", m.serviceName, subject),
		TextContent: body,
	}

	if _, _, err := m.client.TransactionalEmailsApi.SendTransacEmail(ctx, email); err != nil {
		logging.Errorf("Failed to send operator alert %q: %v", subject, err)
		return
	}
	logging.Infof("Operator alert sent: %s", subject)
}
