package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Farouk858/product-radar/models"
	"golang.org/x/time/rate"
)

// Polite spaces out requests to the same host. It is safe for concurrent
// use.
type Polite struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
}

// NewPolite returns a Polite that allows one request per interval to each
// host. An interval <= 0 disables spacing.
func NewPolite(interval time.Duration) *Polite {
	every := rate.Inf
	if interval > 0 {
		every = rate.Every(interval)
	}
	return &Polite{
		limiters: make(map[string]*rate.Limiter),
		every:    every,
	}
}

// Wait blocks until a request to rawURL's host is allowed.
func (p *Polite) Wait(ctx context.Context, rawURL string) error {
	return p.limiter(extractDomain(rawURL)).Wait(ctx)
}

func (p *Polite) limiter(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[host]
	if !ok {
		l = rate.NewLimiter(p.every, 1)
		p.limiters[host] = l
	}
	return l
}

// Wrap returns an Engine that waits for p before every fetch through e.
func (p *Polite) Wrap(e Engine) Engine {
	return &politeEngine{inner: e, polite: p}
}

type politeEngine struct {
	inner  Engine
	polite *Polite
}

func (e *politeEngine) Name() string { return e.inner.Name() }

func (e *politeEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if err := e.polite.Wait(ctx, req.URL); err != nil {
		return nil, Categorize(err, models.ErrCodeTimeout, "waiting for host slot")
	}
	return e.inner.Fetch(ctx, req)
}
