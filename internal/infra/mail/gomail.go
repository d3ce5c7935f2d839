package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

// SMTPDispatcher sends transactional mail over SMTP using gomail.
type SMTPDispatcher struct {
	cfg config.SMTPSettings
	log *zap.Logger
}

// NewSMTPDispatcher constructs a dispatcher for the configured SMTP relay.
func NewSMTPDispatcher(cfg config.SMTPSettings, log *zap.Logger) (*SMTPDispatcher, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	return &SMTPDispatcher{cfg: cfg, log: log}, nil
}

// SendConfirmation delivers the account confirmation token.
func (d *SMTPDispatcher) SendConfirmation(_ context.Context, email, token string, expiresAt time.Time) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Confirm your account</h2>
    <p>Use the code below to confirm your address:</p>
    <div style="font-size: 20px; font-weight: bold; letter-spacing: 2px;">%s</div>
    <p>The code expires at %s.</p>
  </div>
</body>
</html>`, token, expiresAt.UTC().Format(time.RFC1123))

	return d.send(email, "Confirm your account", body, "confirmation")
}

// SendPasswordReset delivers the password reset token.
func (d *SMTPDispatcher) SendPasswordReset(_ context.Context, email, token string, expiresAt time.Time) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>Use the code below to set a new password:</p>
    <div style="font-size: 20px; font-weight: bold; letter-spacing: 2px;">%s</div>
    <p>The code expires at %s. If you did not request this, ignore this message.</p>
  </div>
</body>
</html>`, token, expiresAt.UTC().Format(time.RFC1123))

	return d.send(email, "Reset your password", body, "password_reset")
}

func (d *SMTPDispatcher) send(email, subject, body, kind string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", d.cfg.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	dialer := gomail.NewDialer(d.cfg.Host, d.cfg.Port, d.cfg.Username, d.cfg.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s mail: %w", kind, err)
	}

	d.log.Info("mail dispatched",
		zap.String("kind", kind),
		zap.String("to", logger.MaskEmail(email)),
	)
	return nil
}

var _ port.MailDispatcher = (*SMTPDispatcher)(nil)
