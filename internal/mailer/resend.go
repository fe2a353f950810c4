// Package mailer sends operator emails through the Resend HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Email is one outbound message. Body is HTML.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer is the outbound email capability. Delivery is consumed as
// fire-and-forget by the rest of the system.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// Resend is a Mailer backed by the Resend API.
type Resend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewResend returns a Resend mailer. baseURL may be empty to use the
// production API.
func NewResend(apiKey, baseURL string) *Resend {
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &Resend{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the email to the Resend API. Any non-2xx response is an
// error; callers decide whether to log or retry.
func (r *Resend) Send(ctx context.Context, e Email) error {
	payload := map[string]interface{}{
		"from":    e.From,
		"to":      []string{e.To},
		"subject": e.Subject,
		"html":    e.Body,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("resend: http %d", resp.StatusCode)
	}
	return nil
}
