package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/kafka"
)

type Sender interface {
	Send(ctx context.Context, event kafka.NotificationEvent) error
}

// LogSender only logs the message. Used when no SMTP host is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, event kafka.NotificationEvent) error {
	s.log.Info("send email",
		slog.String("to", event.Email),
		slog.String("type", event.Type),
		slog.String("message", event.Message),
	)
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) Send(_ context.Context, event kafka.NotificationEvent) error {
	if event.Email == "" {
		return nil
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.From, []string{event.Email}, buildMessage(s.cfg.From, event)); err != nil {
		return fmt.Errorf("send email to %s: %w", event.Email, err)
	}
	return nil
}

func buildMessage(from string, event kafka.NotificationEvent) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", event.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject(event.Type))
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(event.Message)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func subject(eventType string) string {
	switch eventType {
	case kafka.EventBookingCreated:
		return "Your booking is waiting for payment"
	case kafka.EventBookingConfirmed:
		return "Your booking is confirmed"
	case kafka.EventBookingCancelled:
		return "Your booking was cancelled"
	case kafka.EventBookingExpired:
		return "Your booking expired"
	case kafka.EventWaitlistPromoted:
		return "A room is available for you"
	default:
		return "Travel booking update"
	}
}
