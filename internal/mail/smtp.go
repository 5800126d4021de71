package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"inteldesk/internal/config"
)

type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPTransport(cfg *config.Config) *SMTPTransport {
	return &SMTPTransport{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
	}
}

func (t *SMTPTransport) Name() string { return "smtp" }

func (t *SMTPTransport) Send(ctx context.Context, env *Envelope) error {
	auth := smtp.PlainAuth("", t.username, t.password, t.host)

	headers := []string{
		"From: " + env.From,
		"To: " + strings.Join(env.To, ", "),
	}
	if len(env.Cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(env.Cc, ", "))
	}
	headers = append(headers,
		"Subject: "+env.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
	)

	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + env.HtmlBody

	// Bcc recipients go on the RCPT list but never into headers.
	rcpts := make([]string, 0, len(env.To)+len(env.Cc)+len(env.Bcc))
	rcpts = append(rcpts, env.To...)
	rcpts = append(rcpts, env.Cc...)
	rcpts = append(rcpts, env.Bcc...)

	addr := fmt.Sprintf("%s:%d", t.host, t.port)

	// net/smtp has no ctx support; run the dial+send in a goroutine so
	// a stalled server cannot hold the dispatch batch past its timeout.
	errCh := make(chan error, 1)
	go func() {
		errCh <- smtp.SendMail(addr, auth, env.From, rcpts, []byte(msg))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
