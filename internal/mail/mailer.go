package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/teachme/platform/internal/config"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
	log         zerolog.Logger
}

// NewMailer creates a mailer from SMTP configuration.
func NewMailer(cfg config.MailConfig, log zerolog.Logger) *Mailer {
	return &Mailer{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:        cfg.From,
		frontendURL: cfg.FrontendURL,
		log:         log.With().Str("component", "mailer").Logger(),
	}
}

// SendInvite emails an invitation. orgName and courseTitle are optional
// context for the message body; an empty courseTitle means an
// organization-level invite.
func (m *Mailer) SendInvite(ctx context.Context, to, role, orgName, courseTitle string) error {
	subject := "You have been invited to TeachMe"
	var body string
	switch {
	case courseTitle != "":
		body = fmt.Sprintf(
			"You have been invited to join the course %q as a %s.\n\nAccept your invitation at %s/invites",
			courseTitle, role, m.frontendURL,
		)
	case orgName != "":
		body = fmt.Sprintf(
			"You have been invited to join %s as a %s.\n\nAccept your invitation at %s/invites",
			orgName, role, m.frontendURL,
		)
	default:
		body = fmt.Sprintf(
			"You have been invited to TeachMe as a %s.\n\nAccept your invitation at %s/invites",
			role, m.frontendURL,
		)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	m.log.Debug().Str("to", to).Str("role", role).Msg("invite email sent")
	return nil
}
