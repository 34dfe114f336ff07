package sendgrid

import (
	"context"
	"fmt"

	"github.com/nitrmart-api/internal/config"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends emails through the SendGrid v3 API.
type Mailer struct {
	client *sg.Client
	from   *mail.Email
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		client: sg.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.MailFromName, cfg.MailFrom),
	}
}

func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), body, "")
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
