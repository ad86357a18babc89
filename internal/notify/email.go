// Package notify delivers tenant notifications. Email goes out through
// a per-tenant provider strategy resolved from the tenant profile:
// "internal" uses the tenant's own SMTP relay, "postmark" uses the
// Postmark API. In-app notifications are kept in a pluggable store.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mrz1836/postmark"

	"uidam/internal/tenant/profile"
)

// Email is a rendered message ready for delivery.
type Email struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers email for one tenant. Senders are derived from the
// tenant profile and cached per tenant; see Registry.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

var (
	// ErrUnknownProvider is returned for an email provider name the
	// service does not implement.
	ErrUnknownProvider = errors.New("unknown email provider")

	// ErrProviderNotConfigured is returned when the tenant profile lacks
	// the settings its provider requires.
	ErrProviderNotConfigured = errors.New("email provider not configured")
)

// NewSender builds the delivery strategy for a tenant's email settings.
func NewSender(s profile.EmailSettings) (Sender, error) {
	switch s.Provider {
	case profile.EmailProviderInternal:
		if s.Host == "" || s.Username == "" || s.Password == "" {
			return nil, fmt.Errorf("%w: internal provider requires host, username and password", ErrProviderNotConfigured)
		}
		return &smtpSender{settings: s}, nil
	case profile.EmailProviderPostmark:
		if s.ServerToken == "" {
			return nil, fmt.Errorf("%w: postmark provider requires a server token", ErrProviderNotConfigured)
		}
		return &postmarkSender{
			client: postmark.NewClient(s.ServerToken, ""),
			from:   s.From,
		}, nil
	case "":
		return nil, fmt.Errorf("%w: no provider set", ErrProviderNotConfigured)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
	}
}

// smtpSender delivers through the tenant's own SMTP relay.
type smtpSender struct {
	settings profile.EmailSettings
}

func (s *smtpSender) Send(_ context.Context, msg Email) error {
	from := msg.From
	if from == "" {
		from = s.settings.From
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	if msg.HTMLBody != "" {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.HTMLBody)
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.TextBody)
	}

	addr := fmt.Sprintf("%s:%d", s.settings.Host, s.settings.Port)
	auth := smtp.PlainAuth("", s.settings.Username, s.settings.Password, s.settings.Host)
	if err := smtp.SendMail(addr, auth, from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// postmarkSender delivers through the Postmark API.
type postmarkSender struct {
	client *postmark.Client
	from   string
}

func (p *postmarkSender) Send(ctx context.Context, msg Email) error {
	from := msg.From
	if from == "" {
		from = p.from
	}

	_, err := p.client.SendEmail(ctx, postmark.Email{
		From:     from,
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("postmark send: %w", err)
	}
	return nil
}
