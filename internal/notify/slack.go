package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackWebhook posts messages to per-user Slack incoming webhooks. The
// webhook URL is supplied per call because it comes from the acting user's
// config record, not from process configuration.
type SlackWebhook struct {
	client  *http.Client
	timeout time.Duration
}

type SlackWebhookConfig struct {
	// Timeout bounds each webhook POST. Defaults to 5s if zero.
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewSlackWebhook(cfg SlackWebhookConfig) *SlackWebhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &SlackWebhook{client: client, timeout: timeout}
}

// Chat POSTs {"text": text} to webhookURL. No retries; the per-call timeout
// keeps a slow webhook from holding up the workflow.
func (s *SlackWebhook) Chat(ctx context.Context, webhookURL, text string) error {
	if webhookURL == "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("slack marshal payload: %w", err)
	}
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack post: unexpected status %s", resp.Status)
	}
	return nil
}

// Broadcast is not a Slack concern; the webhook sink ignores it.
func (s *SlackWebhook) Broadcast(ctx context.Context, subject, message string) error {
	return nil
}
