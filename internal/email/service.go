package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/cliniqor/cliniqor-api/internal/config"
)

// Service sends account emails. Delivery is best effort: callers log
// failures and never surface them to the client.
type Service interface {
	SendWelcome(to string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewService returns an SMTP-backed sender, or a no-op sender when no SMTP
// host is configured.
func NewService(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return &noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendWelcome(to string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome to Cliniqor")
	m.SetBody("text/plain", "Your Cliniqor account is ready. You can now sign in and start managing patient records.")

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

type noopService struct{}

func (*noopService) SendWelcome(string) error { return nil }
