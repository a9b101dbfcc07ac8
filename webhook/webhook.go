// Package webhook posts signed run events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Farouk858/product-radar/config"
)

// SignatureHeader carries "sha256=<hex>" when a secret is configured.
const SignatureHeader = "X-Radar-Signature"

// EventDigestCompleted is sent once per finished run.
const EventDigestCompleted = "digest.completed"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Client delivers events to one endpoint.
type Client struct {
	url      string
	secret   string
	attempts int
	delays   []time.Duration
	http     *http.Client
}

// New creates a Client from cfg. It returns nil when no URL is configured;
// a nil Client ignores every delivery.
func New(cfg config.WebhookConfig) *Client {
	if cfg.URL == "" {
		return nil
	}
	return &Client{
		url:      cfg.URL,
		secret:   cfg.Secret,
		attempts: max(cfg.Attempts, 1),
		delays:   []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Deliver sends event once. The request body is signed with HMAC-SHA256
// if a secret is configured.
func (c *Client) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Product-Radar-Webhook/1.0")

	if c.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(c.secret, body))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Send delivers event, retrying failed attempts after 1s, 5s and 30s up to
// the configured attempt count. It returns the last error once attempts are
// exhausted or ctx is done.
func (c *Client) Send(ctx context.Context, event *Event) error {
	if c == nil {
		return nil
	}

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			delay := c.delays[min(attempt-2, len(c.delays)-1)]
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		if err = c.Deliver(ctx, event); err == nil {
			slog.Info("webhook delivered",
				"url", c.url,
				"event", event.Type,
				"run_id", event.RunID,
				"attempt", attempt,
			)
			return nil
		}
		slog.Warn("webhook delivery failed",
			"url", c.url,
			"event", event.Type,
			"run_id", event.RunID,
			"attempt", attempt,
			"error", err,
		)
	}
	return err
}
