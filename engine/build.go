package engine

import (
	"fmt"

	"github.com/Farouk858/product-radar/config"
)

// Engine modes accepted by Build.
const (
	ModeHTTP       = "http"
	ModeRod        = "rod"
	ModeRodStealth = "rod-stealth"
	ModeAuto       = "auto"
)

// NeedsBrowser reports whether mode drives a browser.
func NeedsBrowser(mode string) bool {
	return mode != ModeHTTP
}

// Build assembles the engine selected by cfg.Engine.Mode. rodFetch may be nil
// in http mode. The returned engine spaces requests per host according to
// cfg.Fetch.HostInterval. accept is only used in auto mode.
func Build(cfg *config.Config, rodFetch RodFetchFunc, accept AcceptFunc) (Engine, error) {
	httpEngine := func() Engine {
		return NewHTTPEngine(HTTPOptions{
			UserAgent:      cfg.Browser.UserAgent,
			AcceptLanguage: cfg.Browser.Locale + ",en;q=0.9",
			Timeout:        cfg.Engine.HTTPTimeout,
		})
	}

	var e Engine
	switch cfg.Engine.Mode {
	case ModeHTTP:
		e = httpEngine()
	case ModeRod, "":
		e = NewRodEngine(rodFetch, false)
	case ModeRodStealth:
		e = NewRodEngine(rodFetch, true)
	case ModeAuto:
		d := NewDispatcher(
			[]Engine{httpEngine(), NewRodEngine(rodFetch, false), NewRodEngine(rodFetch, true)},
			cfg.Engine.EscalationDelays,
			NewDomainMemory(cfg.Engine.MemoryTTL),
		)
		d.SetAccept(accept)
		e = d
	default:
		return nil, fmt.Errorf("unknown engine mode %q", cfg.Engine.Mode)
	}

	return NewPolite(cfg.Fetch.HostInterval).Wrap(e), nil
}
