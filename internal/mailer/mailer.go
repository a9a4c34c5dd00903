package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/langhaus/website-backend/internal/config"
)

// Mailer sends HTML mail over plain SMTP with STARTTLS-capable servers
// (GMX, Gmail and friends on port 587).
type Mailer struct {
	host     string
	port     string
	user     string
	password string
	fromName string
	log      zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		fromName: cfg.SMTPFromName,
		log:      log,
	}
}

// Enabled reports whether SMTP credentials are configured. Without them mail
// is skipped and logged instead of failing the surrounding request.
func (m *Mailer) Enabled() bool {
	return m.user != ""
}

func (m *Mailer) Send(to []string, subject, htmlBody string) error {
	if !m.Enabled() {
		m.log.Warn().Strs("to", to).Str("subject", subject).
			Msg("smtp not configured, dropping mail")
		return nil
	}

	msg := buildMessage(m.user, m.fromName, to, subject, htmlBody)
	auth := smtp.PlainAuth("", m.user, m.password, m.host)

	if err := smtp.SendMail(m.host+":"+m.port, auth, m.user, to, []byte(msg)); err != nil {
		m.log.Error().Err(err).Strs("to", to).Str("subject", subject).Msg("send mail failed")
		return fmt.Errorf("send mail: %w", err)
	}

	m.log.Info().Strs("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}

func buildMessage(from, fromName string, to []string, subject, htmlBody string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	return msg.String()
}
