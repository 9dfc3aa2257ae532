package service

import (
	"context"
	"fmt"
	"net/url"

	"weatherapp/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Notifier delivers account emails. Both methods block until the provider
// accepted or rejected the message.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendResetEmail(ctx context.Context, to, token string) error
}

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport hands a composed message to a mail provider
type Transport interface {
	Send(ctx context.Context, m *Message) error
}

type MailNotifier struct {
	cfg       config.Mail
	transport Transport
}

// NewNotifier picks the transport named by cfg.Provider
func NewNotifier(cfg config.Mail) (*MailNotifier, error) {
	var t Transport

	switch cfg.Provider {
	case "smtp":
		t = NewSMTPTransport(cfg)
	case "sendgrid":
		t = NewSendGridTransport(cfg)
	case "log":
		t = LogTransport{}
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}

	return NewMailNotifier(cfg, t), nil
}

func NewMailNotifier(cfg config.Mail, t Transport) *MailNotifier {
	if cfg.ResetBaseURL == "" {
		cfg.ResetBaseURL = cfg.BaseURL
	}

	return &MailNotifier{cfg: cfg, transport: t}
}

func (n *MailNotifier) VerificationLink(token string) string {
	return n.cfg.BaseURL + "/auth/verify-email?token=" + url.QueryEscape(token)
}

func (n *MailNotifier) ResetLink(token string) string {
	return n.cfg.ResetBaseURL + "/auth/reset-password?token=" + url.QueryEscape(token)
}

func (n *MailNotifier) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := n.VerificationLink(token)

	return n.transport.Send(ctx, &Message{
		To:      to,
		Subject: "Verify your email",
		Text:    "Click the link to verify your email: " + link,
		HTML:    fmt.Sprintf(`<p>Click here to verify your email: <a href="%s">%s</a></p>`, link, link),
	})
}

func (n *MailNotifier) SendResetEmail(ctx context.Context, to, token string) error {
	link := n.ResetLink(token)

	return n.transport.Send(ctx, &Message{
		To:      to,
		Subject: "Reset your password",
		Text:    "Click the link to reset your password: " + link,
		HTML:    fmt.Sprintf(`<p>Click to reset your password: <a href="%s">%s</a></p>`, link, link),
	})
}

type SMTPTransport struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewSMTPTransport(cfg config.Mail) *SMTPTransport {
	return &SMTPTransport{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.SenderAddress,
		name:   cfg.SenderName,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, m *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", t.from, t.name)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)
	msg.AddAlternative("text/html", m.HTML)

	if err := t.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp delivery failed, %w", err)
	}

	return nil
}

type SendGridTransport struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridTransport(cfg config.Mail) *SendGridTransport {
	return &SendGridTransport{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   sgmail.NewEmail(cfg.SenderName, cfg.SenderAddress),
	}
}

func (t *SendGridTransport) Send(ctx context.Context, m *Message) error {
	msg := sgmail.NewSingleEmail(t.from, m.Subject, sgmail.NewEmail("", m.To), m.Text, m.HTML)

	resp, err := t.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid delivery failed, %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message with status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}

// LogTransport writes messages to the log instead of sending them. Meant
// for local development.
type LogTransport struct{}

func (LogTransport) Send(_ context.Context, m *Message) error {
	zap.L().Info("Outgoing email",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Text),
	)

	return nil
}
