package mailer

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"
)

// Sender delivers out-of-band messages such as access-code emails. Delivery
// is fire-and-forget from the caller's point of view; failures are logged,
// never surfaced to the request that triggered them.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailgun sends through the Mailgun API.
type Mailgun struct {
	mg   *mailgun.MailgunImpl
	from string
	log  zerolog.Logger
}

// NewMailgun creates a Mailgun sender.
func NewMailgun(domain, apiKey, from string, log zerolog.Logger) *Mailgun {
	return &Mailgun{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: from,
		log:  log,
	}
}

// Send delivers one plain-text message.
func (m *Mailgun) Send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.mg.NewMessage(m.from, subject, body, to)
	_, _, err := m.mg.Send(ctx, msg)
	if err != nil {
		m.log.Error().Err(err).Str("to", to).Msg("email send failed")
		return err
	}
	return nil
}

// Disabled is used when no Mailgun credentials are configured; it logs the
// message that would have been sent and succeeds.
type Disabled struct {
	Log zerolog.Logger
}

// Send logs and drops the message.
func (d *Disabled) Send(ctx context.Context, to, subject, body string) error {
	d.Log.Info().Str("to", to).Str("subject", subject).Msg("mailer disabled, dropping email")
	return nil
}
