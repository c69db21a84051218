package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/jordan-wright/email"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
)

var ErrNoRecipient = errors.New("mail: recipient is required")

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends emails via SMTP
type SMTPMailer struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

// NewSMTPMailer returns a mailer for cfg, or nil when no SMTP host is set.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	if !cfg.Enabled() {
		return nil
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = "no-reply@localhost"
		log.Warnf("[Mail] SMTP_FROM not set, using default sender: %s", from)
	}
	return &SMTPMailer{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" && m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = msg.Subject
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}

	if err := e.Send(m.addr, auth); err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
		return fmt.Errorf("send mail via %s: %w", m.addr, err)
	}
	log.Infof("[Mail] Email %q sent via %s", msg.Subject, m.addr)
	return nil
}

// New returns the configured Mailer, or nil when SMTP is not configured.
func New(cfg config.MailConfig) Mailer {
	if m := NewSMTPMailer(cfg); m != nil {
		return m
	}
	return nil
}
