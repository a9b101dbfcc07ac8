// Package notify delivers the daily digest by email.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/Farouk858/product-radar/config"
	"github.com/jordan-wright/email"
)

// sendFunc delivers a prepared message to addr.
type sendFunc func(msg *email.Email, addr string, auth smtp.Auth) error

// Mailer sends plain-text digests over SMTP with STARTTLS.
type Mailer struct {
	cfg  config.EmailConfig
	send sendFunc
}

// NewMailer creates a Mailer for cfg.
func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{
		cfg: cfg,
		send: func(msg *email.Email, addr string, auth smtp.Auth) error {
			return msg.Send(addr, auth)
		},
	}
}

// Configured reports whether sender credentials and recipients are set.
func (m *Mailer) Configured() bool {
	return m.cfg.User != "" && m.cfg.Pass != "" && len(m.cfg.To) > 0
}

// Send mails body to the configured recipients. Without credentials it logs
// the skip and returns nil.
func (m *Mailer) Send(subject, body string) error {
	if !m.Configured() {
		slog.Info("email credentials not set, skipping email send")
		return nil
	}

	msg := email.NewEmail()
	msg.From = m.cfg.User
	msg.To = m.cfg.To
	msg.Subject = subject
	msg.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	err := m.send(msg, addr, smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(msg, addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send digest email: %w", err)
	}

	slog.Info("digest email sent", "to", strings.Join(m.cfg.To, ","), "subject", subject)
	return nil
}
