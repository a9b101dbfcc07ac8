package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/Farouk858/product-radar/engine"
	"github.com/Farouk858/product-radar/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// Fetch renders req.URL in a pooled tab and returns its HTML. It has the
// engine.RodFetchFunc signature.
//
// Order matters: stealth, identity overrides and the hijack router must be
// in place before Navigate, since they only affect later navigations.
// The deferred about:blank uses the page without the request context so
// cleanup still runs after the deadline has passed.
func (s *Scraper) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.fetchCfg.NavigationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	s.applyIdentity(page, req)

	if router := setupHijack(page, req.Block); router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if err := p.Navigate(req.URL); err != nil {
		return nil, engine.Categorize(err, models.ErrCodeNavigation, "navigation failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		if ctx.Err() != nil {
			return nil, engine.Categorize(ctx.Err(), models.ErrCodeTimeout, "page did not settle")
		}
		slog.Debug("WaitDOMStable did not converge, using current DOM", "url", req.URL, "error", err)
	}

	// Late widgets (badges, "only 2 left" labels) often render after the DOM
	// first settles.
	if s.fetchCfg.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, engine.Categorize(ctx.Err(), models.ErrCodeTimeout, "page did not settle")
		case <-time.After(s.fetchCfg.SettleDelay):
		}
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, engine.Categorize(err, models.ErrCodeNavigation, "failed to read page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &engine.FetchResult{
		HTML:       rawHTML,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: navigationStatus(p),
		FinalURL:   finalURL,
	}, nil
}

// applyIdentity makes the tab present the configured desktop browser: user
// agent, locale, timezone, viewport and extra headers. Failures are logged;
// a page with a default identity is still worth fetching.
func (s *Scraper) applyIdentity(page *rod.Page, req *engine.FetchRequest) {
	cfg := s.browserCfg

	if cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      cfg.UserAgent,
			AcceptLanguage: cfg.Locale,
		}); err != nil {
			slog.Debug("user agent override failed", "error", err)
		}
	}
	if cfg.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: cfg.Locale}).Call(page); err != nil {
			slog.Debug("locale override failed", "error", err)
		}
	}
	if cfg.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: cfg.Timezone}).Call(page); err != nil {
			slog.Debug("timezone override failed", "error", err)
		}
	}
	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             cfg.ViewportWidth,
			Height:            cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			slog.Debug("viewport override failed", "error", err)
		}
	}

	headers := extraHeaders(req)
	if len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
	}
}

// extraHeaders returns the request headers plus a search-engine Referer
// when the caller did not set one.
func extraHeaders(req *engine.FetchRequest) map[string]string {
	out := make(map[string]string, len(req.Headers)+1)
	if _, ok := req.Headers["Referer"]; !ok {
		if u, err := url.Parse(req.URL); err == nil && u.Hostname() != "" {
			out["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range req.Headers {
		out[k] = v
	}
	return out
}

// navigationStatus reads the document's HTTP status from the Navigation
// Timing API; 0 when unavailable.
func navigationStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// evalStringOrEmpty evaluates js and returns its string result, or "".
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
