package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"kri-backend/internal/shared/metrics"
	"kri-backend/internal/shared/telemetry"
)

// Sender delivers a composed summary email. Send reports delivery success;
// it never returns an error because email failure must not abort the
// pipeline run that produced the summary.
type Sender interface {
	Send(ctx context.Context, subject, htmlBody string, recipients []string) bool
}

// SMTPMailer sends mail over SMTP with STARTTLS and PLAIN auth.
type SMTPMailer struct {
	Server         string
	Port           int
	Email          string
	Password       string
	Timeout        time.Duration
	AllowedDomains []string
}

// Send filters recipients through the domain allow-list and delivers the
// message. Returns true only when the SMTP transaction completed.
func (m *SMTPMailer) Send(ctx context.Context, subject, htmlBody string, recipients []string) bool {
	allowed := FilterRecipients(recipients, m.AllowedDomains)
	if len(allowed) == 0 {
		telemetry.Warn("notify.no_allowed_recipients", map[string]any{
			"requested": len(recipients),
		})
		metrics.IncEmailFailure()
		return false
	}

	if err := m.send(ctx, subject, htmlBody, allowed); err != nil {
		telemetry.Error("notify.send_failed", map[string]any{
			"error":      err.Error(),
			"recipients": len(allowed),
		})
		metrics.IncEmailFailure()
		return false
	}

	telemetry.Info("notify.sent", map[string]any{
		"subject":    subject,
		"recipients": len(allowed),
	})
	metrics.IncSummaryEmailed()
	return true
}

func (m *SMTPMailer) send(ctx context.Context, subject, htmlBody string, recipients []string) error {
	addr := fmt.Sprintf("%s:%d", m.Server, m.Port)

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}

	client, err := smtp.NewClient(conn, m.Server)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.Server}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	auth := smtp.PlainAuth("", m.Email, m.Password, m.Server)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if err := client.Mail(m.Email); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	msg := buildMessage(m.Email, recipients, subject, htmlBody)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return client.Quit()
}

func buildMessage(from string, to []string, subject, htmlBody string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}

// FilterRecipients keeps only addresses whose domain is in the allow-list.
// Matching is case-insensitive. An empty allow-list rejects everything.
func FilterRecipients(recipients, allowedDomains []string) []string {
	if len(allowedDomains) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(allowedDomains))
	for _, d := range allowedDomains {
		allowed[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}

	var out []string
	for _, rcpt := range recipients {
		addr := strings.TrimSpace(rcpt)
		at := strings.LastIndex(addr, "@")
		if at <= 0 || at == len(addr)-1 {
			continue
		}
		domain := strings.ToLower(addr[at+1:])
		if _, ok := allowed[domain]; ok {
			out = append(out, addr)
		}
	}
	return out
}

// LogMailer logs the message instead of sending it. Used in dev when no SMTP
// credentials are configured.
type LogMailer struct{}

// Send logs the message and reports success so dev pipelines can complete.
func (LogMailer) Send(ctx context.Context, subject, htmlBody string, recipients []string) bool {
	_ = ctx
	telemetry.Info("notify.dev_log", map[string]any{
		"subject":    subject,
		"recipients": recipients,
		"body_bytes": len(htmlBody),
	})
	metrics.IncSummaryEmailed()
	return true
}

var (
	_ Sender = (*SMTPMailer)(nil)
	_ Sender = LogMailer{}
)
