package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Farouk858/product-radar/api/handler"
	"github.com/Farouk858/product-radar/config"
	"github.com/Farouk858/product-radar/engine"
	"github.com/Farouk858/product-radar/extract"
	"github.com/Farouk858/product-radar/notify"
	"github.com/Farouk858/product-radar/radar"
	"github.com/Farouk858/product-radar/scraper"
	"github.com/Farouk858/product-radar/webhook"
)

// runtime owns the fetch stack shared by run, daemon and serve.
type runtime struct {
	engine  engine.Engine
	scraper *scraper.Scraper
	radar   *radar.Radar
}

// newRuntime launches a browser when the engine mode needs one and wires
// the radar with its notifiers.
func newRuntime(cfg *config.Config) (*runtime, error) {
	rt := &runtime{}

	var rodFetch engine.RodFetchFunc
	if engine.NeedsBrowser(cfg.Engine.Mode) {
		sc, err := scraper.NewScraper(cfg.Browser, cfg.Fetch)
		if err != nil {
			return nil, fmt.Errorf("start browser: %w", err)
		}
		rt.scraper = sc
		rodFetch = sc.Fetch
	}

	accept := radar.Accept(extract.Options{PageCap: cfg.Limits.PageCap})
	e, err := engine.Build(cfg, rodFetch, accept)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.engine = e
	slog.Info("fetch engine ready", "mode", cfg.Engine.Mode, "browser", rt.scraper != nil)

	rt.radar = radar.New(cfg, e,
		radar.WithMailer(notify.NewMailer(cfg.Email)),
		radar.WithWebhook(webhook.New(cfg.Webhook)),
	)
	return rt, nil
}

// pool returns the browser pool reporter, nil without a browser.
func (rt *runtime) pool() handler.PoolReporter {
	if rt.scraper == nil {
		return nil
	}
	return rt.scraper
}

// Close drains the page pool and kills the browser process, if any.
func (rt *runtime) Close() {
	if rt.scraper != nil {
		rt.scraper.Close()
	}
}
