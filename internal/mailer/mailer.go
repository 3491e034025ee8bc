package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"healteex/api/internal/config"
)

// Mailer delivers transactional mail. Callers in the signup flow treat
// delivery as best-effort: errors are logged, never surfaced to the client.
type Mailer interface {
	SendSignupToken(ctx context.Context, to string, token string, role string, expiresInMinutes int) error
}

// New returns a no-op mailer when no API key is configured, so development
// environments work without a mail provider.
func New(cfg config.MailConfig, frontendBaseURL string) Mailer {
	if cfg.APIKey == "" {
		return noopMailer{}
	}
	return &HTTPMailer{
		endpoint:        cfg.Endpoint,
		apiKey:          cfg.APIKey,
		from:            cfg.From,
		frontendBaseURL: frontendBaseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type noopMailer struct{}

func (noopMailer) SendSignupToken(context.Context, string, string, string, int) error {
	return nil
}

// HTTPMailer sends mail through a resend-style JSON API.
type HTTPMailer struct {
	endpoint        string
	apiKey          string
	from            string
	frontendBaseURL string
	client          *http.Client
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (m *HTTPMailer) SendSignupToken(ctx context.Context, to string, token string, role string, expiresInMinutes int) error {
	verifyURL := fmt.Sprintf("%s/#/signup/verify?token=%s&role=%s",
		strings.TrimRight(m.frontendBaseURL, "/"), token, role)

	text := fmt.Sprintf(
		"Welcome to Healteex!\n\n"+
			"Use the token below to complete your registration:\n%s\n\n"+
			"Or click the link: %s\n\n"+
			"This token expires in %d minutes.",
		token, verifyURL, expiresInMinutes)

	body, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Healteex signup confirmation",
		Text:    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail api status %d", resp.StatusCode)
	}
	return nil
}
