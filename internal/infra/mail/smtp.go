package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/atlasai/outbound/internal/config"
)

// SMTPSender delivers mail over a direct SMTP connection. It is the
// fallback provider when no API-based sender is configured.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

// Send delivers one message. gomail has no context support, so
// cancellation is only honored before dialing.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return "", nil
}
