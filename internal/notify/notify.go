package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
)

// Sender delivers transactional email and SMS to customers.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, phone, message string) error
}

// Module provides the notification sender to the Fx graph.
var Module = fx.Provide(NewSender)

// NewSender builds the configured sender (log or smtp).
func NewSender(cfg config.Config, logger *zap.Logger) (Sender, error) {
	switch cfg.Notification.Driver {
	case "log":
		return logSender{logger: logger}, nil
	case "smtp", "sms":
		if cfg.Notification.SMTPHost == "" {
			logger.Warn("smtp host missing; falling back to log sender")
			return logSender{logger: logger}, nil
		}
		return &smtpSender{cfg: cfg.Notification, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported notification driver: %s", cfg.Notification.Driver)
	}
}

// logSender writes notifications to the service log; the default for local
// and test environments.
type logSender struct {
	logger *zap.Logger
}

func (l logSender) SendEmail(_ context.Context, to, subject, body string) error {
	l.logger.Info("email notification",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

func (l logSender) SendSMS(_ context.Context, phone, message string) error {
	l.logger.Info("sms notification",
		zap.String("phone", phone),
		zap.String("message", message),
	)
	return nil
}

// smtpSender delivers email over the configured SMTP relay. SMS is logged
// until a provider integration is configured.
type smtpSender struct {
	cfg    config.Notification
	logger *zap.Logger
}

func (s *smtpSender) SendEmail(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.cfg.EmailFrom, to, subject, body)
	if err := smtp.SendMail(addr, auth, s.cfg.EmailFrom, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *smtpSender) SendSMS(_ context.Context, phone, message string) error {
	s.logger.Info("sms notification",
		zap.String("phone", phone),
		zap.String("message", message),
		zap.String("sender_id", s.cfg.SMSSenderID),
	)
	return nil
}
