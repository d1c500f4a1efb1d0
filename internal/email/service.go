package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// Config is filled from SMTP_* environment variables.
type Config struct {
	Enabled  bool   `default:"false"`
	Host     string `default:"localhost"`
	Port     int    `default:"587"`
	Username string
	Password string
	From     string `default:"no-reply@careconnect.local"`
}

type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewService returns an SMTP sender, or a sender that only logs when SMTP is disabled.
func NewService(cfg Config) Service {
	if !cfg.Enabled {
		return logService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func (s *smtpService) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

type logService struct{}

func (logService) Send(_ context.Context, to, subject, _ string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("email delivery disabled, message dropped")
	return nil
}
