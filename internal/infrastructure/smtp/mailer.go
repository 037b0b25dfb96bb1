package smtp

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type Config struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

type mailer struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg Config) Mailer {
	return &mailer{cfg: cfg, send: smtp.SendMail}
}

// SendEmail delivers an HTML message. net/smtp has no context support, so
// the call runs in a goroutine and ctx only bounds how long the caller waits.
func (m *mailer) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	msg := buildMessage(m.cfg.From, to, subject, htmlBody, time.Now())
	addr := m.cfg.Host + ":" + m.cfg.Port

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	done := make(chan error, 1)
	go func() { done <- m.send(addr, auth, m.cfg.From, []string{to}, msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, to, subject, htmlBody string, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
