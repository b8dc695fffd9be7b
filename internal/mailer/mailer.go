package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"store-directory/internal/config"
)

// Mailer is the outbound mail contract. The user service only ever sends
// one kind of message, so the interface stays narrow.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

const resetSubject = "Password Reset"

var resetTemplate = template.Must(template.New("password-reset").Parse(`
<h2>Password Reset</h2>
<p>Hello {{.Name}},</p>
<p>You requested a password reset for your account. The link below is
valid for one hour:</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
<p>If you didn't request this, you can safely ignore this email.</p>
`))

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	var body bytes.Buffer
	data := struct {
		Name     string
		ResetURL string
	}{Name: name, ResetURL: resetURL}

	if err := resetTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render reset email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", resetSubject)
	msg.SetBody("text/html", body.String())

	// gomail dials synchronously; honor an already-cancelled context
	// before paying for the connection.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}
