// Package radar orchestrates brand scans and full digest runs: fetch every
// brand page, extract and merge candidates, diff them against the stored
// snapshot, then write the report, persist the snapshot and notify.
package radar

import (
	"strings"
	"time"

	"github.com/Farouk858/product-radar/config"
	"github.com/Farouk858/product-radar/engine"
	"github.com/Farouk858/product-radar/extract"
	"github.com/Farouk858/product-radar/webhook"
)

// Mailer delivers the digest email.
type Mailer interface {
	Send(subject, body string) error
}

// Radar runs scans with one fetch engine and one configuration.
type Radar struct {
	cfg    *config.Config
	engine engine.Engine
	mailer Mailer
	hook   *webhook.Client
	now    func() time.Time
}

// Option customises a Radar.
type Option func(*Radar)

// WithMailer sets the digest mailer. Without one no email is sent.
func WithMailer(m Mailer) Option {
	return func(r *Radar) { r.mailer = m }
}

// WithWebhook sets the webhook client notified after each run.
func WithWebhook(c *webhook.Client) Option {
	return func(r *Radar) { r.hook = c }
}

// WithClock overrides the clock used to date reports.
func WithClock(now func() time.Time) Option {
	return func(r *Radar) { r.now = now }
}

// New creates a Radar fetching pages through e.
func New(cfg *config.Config, e engine.Engine, opts ...Option) *Radar {
	r := &Radar{cfg: cfg, engine: e, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Accept reports whether a fetched page yields at least one product
// candidate. It is the auto engine's race acceptance check, so an empty
// storefront shell escalates to a browser engine.
func Accept(opts extract.Options) engine.AcceptFunc {
	return func(res *engine.FetchResult) bool {
		if res == nil || strings.TrimSpace(res.HTML) == "" {
			return false
		}
		return len(extract.Page(res.HTML, res.FinalURL, "", opts).Candidates) > 0
	}
}

func (r *Radar) extractOptions() extract.Options {
	return extract.Options{PageCap: r.cfg.Limits.PageCap}
}

func (r *Radar) fetchRequest(url string) *engine.FetchRequest {
	return &engine.FetchRequest{
		URL:     url,
		Timeout: r.cfg.Fetch.NavigationTimeout,
		Stealth: r.cfg.Fetch.Stealth,
		Block: engine.BlockPolicy{
			ResourceTypes: r.cfg.Fetch.BlockedResourceTypes,
			Hosts:         r.cfg.Fetch.BlockedHosts,
		},
	}
}

func (r *Radar) retryPolicy() engine.RetryPolicy {
	return engine.RetryPolicy{
		Attempts: r.cfg.Fetch.Attempts,
		Backoff:  r.cfg.Fetch.RetryBackoff,
	}
}
