// Package scraper drives a headless Chromium through go-rod and renders
// storefront pages for the rod fetch engines.
package scraper

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Farouk858/product-radar/config"
	"github.com/Farouk858/product-radar/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// Scraper manages the browser lifecycle and the page pool.
// It is safe for concurrent use.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	fetchCfg    config.FetchConfig
	activePages atomic.Int32
	startTime   time.Time
}

// NewScraper launches a headless browser and creates the page pool.
func NewScraper(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-features"), "TranslateUI")
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	if browserCfg.Locale != "" {
		l.Set(flags.Flag("lang"), browserCfg.Locale)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	maxPages := max(browserCfg.MaxPages, 1)
	slog.Info("page pool created", "maxPages", maxPages)

	return &Scraper{
		browser:    browser,
		pagePool:   rod.NewPagePool(maxPages),
		browserCfg: browserCfg,
		fetchCfg:   fetchCfg,
		startTime:  time.Now(),
	}, nil
}

// PoolStats returns the pool's current state.
func (s *Scraper) PoolStats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    max(s.browserCfg.MaxPages, 1),
		ActivePages: int(s.activePages.Load()),
	}
}

// Close drains the page pool and kills the browser process.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: draining page pool")
	s.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := s.browser.Close(); err != nil {
		slog.Warn("closing browser", "error", err)
	}
	slog.Info("scraper shutdown complete", "uptime", time.Since(s.startTime).Round(time.Second))
}
