// Package mail dispatches transactional email through SendGrid. Delivery
// is best effort: a failed or unconfigured send is logged and absorbed,
// never surfaced to the surrounding request.
package mail

import (
	"fmt"

	"waterline/pkg/types"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

type Mailer struct {
	client   *sendgrid.Client
	from     *sgmail.Email
	baseURL  string
	logger   *logrus.Logger
	disabled bool
}

func New(config *types.Config, logger *logrus.Logger) *Mailer {
	m := &Mailer{
		from:    sgmail.NewEmail(config.MailFromName, config.MailFromAddr),
		baseURL: config.BaseURL,
		logger:  logger,
	}

	if config.SendGridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, mail dispatch disabled")
		m.disabled = true
		return m
	}

	m.client = sendgrid.NewSendClient(config.SendGridAPIKey)
	return m
}

// SendPasswordReset emails the reset link embedding the single-use token.
// Errors are logged and swallowed.
func (m *Mailer) SendPasswordReset(recipient, token string) {
	resetURL := fmt.Sprintf("%s/reset-password/%s", m.baseURL, token)
	body := fmt.Sprintf("Click the link to reset your password: %s", resetURL)

	m.send(recipient, "Password Reset Request", body)
}

func (m *Mailer) send(recipient, subject, body string) {
	if m.disabled {
		m.logger.WithFields(logrus.Fields{
			"to":      recipient,
			"subject": subject,
		}).Info("mail dispatch disabled, skipping send")
		return
	}

	if recipient == "" {
		m.logger.WithField("subject", subject).Warn("no recipient address, skipping send")
		return
	}

	message := sgmail.NewSingleEmail(m.from, subject, sgmail.NewEmail("", recipient), body, body)

	resp, err := m.client.Send(message)
	if err != nil {
		m.logger.WithError(err).WithField("to", recipient).Warn("failed to send mail")
		return
	}

	if resp.StatusCode >= 400 {
		m.logger.WithFields(logrus.Fields{
			"to":     recipient,
			"status": resp.StatusCode,
		}).Warn("mail provider rejected send")
	}
}
