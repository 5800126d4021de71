// Package mail wraps the external mail transport. Delivery is
// synchronous per call; callers own timeouts via ctx.
package mail

import (
	"context"
	"fmt"

	"inteldesk/internal/config"
)

// Envelope is a fully composed outgoing message.
type Envelope struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	HtmlBody string
}

// Transport delivers a composed message through an external provider.
type Transport interface {
	Send(ctx context.Context, env *Envelope) error
	Name() string
}

// NewTransport selects the provider from config.
func NewTransport(cfg *config.Config) (Transport, error) {
	switch cfg.MailProvider {
	case "smtp":
		return NewSMTPTransport(cfg), nil
	case "resend":
		return NewResendTransport(cfg)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
