// internal/transport/smtp.go
package transport

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"email-dispatch/internal/common/config"
)

// SMTPMailer delivers through a plain SMTP endpoint. SMTP has no reply
// carrying a provider message id, so one is generated per accepted send.
type SMTPMailer struct {
	dialer     *gomail.Dialer
	senderName string
}

// NewSMTPMailer creates a mailer for the configured SMTP endpoint.
func NewSMTPMailer(cfg config.SMTPConfig, senderName string) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	}
	return &SMTPMailer{dialer: d, senderName: senderName}
}

func (m *SMTPMailer) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled before sending email: %w", err)
	}

	out, messageID := m.build(msg)
	if err := m.dialer.DialAndSend(out); err != nil {
		return "", err
	}
	return messageID, nil
}

// build assembles the wire message. Recipients go out as one comma-joined
// To header.
func (m *SMTPMailer) build(msg *Message) (*gomail.Message, string) {
	out := gomail.NewMessage()
	if m.senderName != "" {
		out.SetAddressHeader("From", msg.From, m.senderName)
	} else {
		out.SetHeader("From", msg.From)
	}
	out.SetHeader("To", msg.JoinedTo())
	out.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		out.SetBody("text/plain", msg.Text)
		out.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		out.SetBody("text/html", msg.HTML)
	default:
		out.SetBody("text/plain", msg.Text)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.dialer.Host)
	out.SetHeader("Message-ID", messageID)
	return out, messageID
}
