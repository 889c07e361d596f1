package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/atlasai/outbound/internal/config"
)

// SendGridSender delivers mail through the SendGrid v3 API. Preferred over
// SMTP when an API key is configured because it returns a provider message
// id that delivery webhooks reference.
type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

func NewSendGridSender(cfg config.SendGrid) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   cfg.From,
	}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

func (s *SendGridSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	from := sgmail.NewEmail("", s.from)
	recipient := sgmail.NewEmail("", to)
	message := sgmail.NewSingleEmail(from, subject, recipient, textBody, htmlBody)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return "", fmt.Errorf("sendgrid send to %s: %w", to, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("sendgrid send to %s: status %d: %s", to, resp.StatusCode, resp.Body)
	}
	var id string
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		id = ids[0]
	}
	return id, nil
}
