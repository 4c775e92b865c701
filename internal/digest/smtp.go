package digest

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/logger"
)

// SMTPConfig holds the connection and addressing settings for email delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	To       string
	Password string
	Subject  string
}

// SMTPDeliverer sends the rendered digest as an HTML email over SMTP with
// STARTTLS and PLAIN authentication.
type SMTPDeliverer struct {
	cfg         SMTPConfig
	dialTimeout time.Duration
}

func NewSMTPDeliverer(cfg SMTPConfig) *SMTPDeliverer {
	if cfg.Subject == "" {
		cfg.Subject = "Your Daily Personalized Digest"
	}
	return &SMTPDeliverer{cfg: cfg, dialTimeout: 30 * time.Second}
}

func (s *SMTPDeliverer) Name() string { return "email" }

// Deliver renders the digest and sends it to the configured recipient.
func (s *SMTPDeliverer) Deliver(ctx context.Context, d Digest) error {
	html, err := RenderHTML(d)
	if err != nil {
		return err
	}

	msg := s.buildMessage(html)
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("send digest email: %w", err)
	}
	logger.FromContext(ctx).Info("digest emailed", zap.String("to", s.cfg.To))
	return nil
}

func (s *SMTPDeliverer) buildMessage(html string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", s.cfg.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", s.cfg.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)
	return msg.String()
}

func (s *SMTPDeliverer) send(ctx context.Context, msg string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("start TLS: %w", err)
	}

	if s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(s.cfg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open message body: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message body: %w", err)
	}
	return client.Quit()
}
