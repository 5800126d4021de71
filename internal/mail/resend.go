package mail

import (
	"context"
	"fmt"

	"inteldesk/internal/config"

	"github.com/resend/resend-go/v2"
)

// ResendTransport delivers through the Resend API.
type ResendTransport struct {
	client *resend.Client
	from   string
}

func NewResendTransport(cfg *config.Config) (*ResendTransport, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY not set")
	}
	return &ResendTransport{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.MailFrom,
	}, nil
}

func (t *ResendTransport) Name() string { return "resend" }

func (t *ResendTransport) Send(ctx context.Context, env *Envelope) error {
	from := env.From
	if from == "" {
		from = t.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      env.To,
		Cc:      env.Cc,
		Bcc:     env.Bcc,
		Subject: env.Subject,
		Html:    env.HtmlBody,
	}

	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}
