// Package notify delivers transactional email to marketplace users.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer is the provider-agnostic interface every email adapter implements.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ── Resend adapter ────────────────────────────────────────────────────────────

type resendMailer struct {
	from   string
	client *resend.Client
}

// NewResendMailer sends through the Resend API. An empty baseURL keeps the
// client's default endpoint.
func NewResendMailer(apiKey, from, baseURL string) (Mailer, error) {
	client := resend.NewClient(apiKey)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("notify: parse resend base url: %w", err)
		}
		client.BaseURL = u
	}
	return &resendMailer{from: from, client: client}, nil
}

func (m *resendMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("notify: message has no recipient")
	}
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("notify: send to %s: %w", msg.To, err)
	}
	log.Printf("notify: sent id=%s to=%s subject=%q", sent.Id, msg.To, msg.Subject)
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used when
// no provider key is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("notify: (not sent) to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
