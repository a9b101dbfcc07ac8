package engine

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/Farouk858/product-radar/models"
)

// AcceptFunc decides whether a fetched page is good enough to end a race.
// A storefront served as an empty JavaScript shell, for example, should
// lose to a browser engine that rendered it.
type AcceptFunc func(*FetchResult) bool

// Dispatcher coordinates multi-engine racing with staged escalation.
// engines[i] starts delays[i] after the race begins; the first accepted
// result wins and cancels the rest. It implements Engine as "auto".
type Dispatcher struct {
	engines []Engine
	delays  []time.Duration
	memory  *DomainMemory
	accept  AcceptFunc
}

// NewDispatcher creates a Dispatcher. Missing delays default to 0 and a nil
// memory disables per-host engine memory.
func NewDispatcher(engines []Engine, escalationDelays []time.Duration, memory *DomainMemory) *Dispatcher {
	delays := make([]time.Duration, len(engines))
	copy(delays, escalationDelays)
	return &Dispatcher{
		engines: engines,
		delays:  delays,
		memory:  memory,
	}
}

// SetAccept installs a result check. Without one every successful fetch is
// accepted.
func (d *Dispatcher) SetAccept(fn AcceptFunc) {
	d.accept = fn
}

func (d *Dispatcher) Name() string { return "auto" }

func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	return d.Dispatch(ctx, req)
}

func (d *Dispatcher) accepted(res *FetchResult) bool {
	return d.accept == nil || d.accept(res)
}

// Dispatch tries the engine remembered for the request's host first, then
// falls back to a full race.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	host := extractDomain(req.URL)

	if name := d.memory.Get(host); name != "" {
		if eng := d.engine(name); eng != nil {
			res, err := eng.Fetch(ctx, req)
			if err == nil && d.accepted(res) {
				slog.Debug("engine memory hit", "host", host, "engine", name)
				return res, nil
			}
			slog.Info("remembered engine failed, racing all engines",
				"host", host, "engine", name, "error", err)
			d.memory.Delete(host)
		}
	}

	return d.race(ctx, req, host)
}

func (d *Dispatcher) engine(name string) Engine {
	for _, e := range d.engines {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

type raceResult struct {
	res *FetchResult
	err error
}

func (d *Dispatcher) race(ctx context.Context, req *FetchRequest, host string) (*FetchResult, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceResult, len(d.engines))
	var wg sync.WaitGroup

	for i, eng := range d.engines {
		wg.Add(1)
		go func(e Engine, delay time.Duration) {
			defer wg.Done()

			if delay > 0 {
				select {
				case <-raceCtx.Done():
					return
				case <-time.After(delay):
				}
			}
			if raceCtx.Err() != nil {
				return
			}

			slog.Debug("engine starting", "engine", e.Name(), "url", req.URL)
			res, err := e.Fetch(raceCtx, req)
			if err != nil {
				slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
			}
			results <- raceResult{res: res, err: err}
		}(eng, d.delays[i])
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var lastErr error
	for rr := range results {
		if rr.err != nil {
			lastErr = rr.err
			continue
		}
		if !d.accepted(rr.res) {
			slog.Debug("engine result rejected", "engine", rr.res.EngineName, "url", req.URL)
			lastErr = models.NewFetchError(models.ErrCodeNavigation, rr.res.EngineName+" returned an unusable page", nil)
			continue
		}
		cancel()
		slog.Info("engine won race", "engine", rr.res.EngineName, "url", req.URL)
		d.memory.Set(host, rr.res.EngineName)
		return rr.res, nil
	}

	if lastErr == nil {
		return nil, models.NewFetchError(models.ErrCodeTransport, "no engine ran for "+req.URL, ctx.Err())
	}
	return nil, Categorize(lastErr, models.ErrCodeTransport, "all engines failed")
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
