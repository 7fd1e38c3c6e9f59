package email

import (
	"fmt"
	"net/smtp"

	"grocery-backend/internal/config"
	"grocery-backend/pkg/logger"
)

// Mailer sends transactional mail. The SMTP implementation targets a
// local relay (mailhog in development), so no auth is involved.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	addr string
	from string
}

func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{
		addr: cfg.Host + ":" + cfg.Port,
		from: cfg.From,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	logger.Info("email sent", map[string]interface{}{"to": to, "subject": subject})
	return nil
}
