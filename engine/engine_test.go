package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Farouk858/product-radar/config"
	"github.com/Farouk858/product-radar/models"
)

// stubEngine answers with fn, after an optional delay.
type stubEngine struct {
	name  string
	delay time.Duration
	calls atomic.Int32
	fn    func(call int) (*FetchResult, error)
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	n := int(s.calls.Add(1))
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, Categorize(ctx.Err(), models.ErrCodeTimeout, "stub")
		case <-time.After(s.delay):
		}
	}
	return s.fn(n)
}

func succeed(name, html string) func(int) (*FetchResult, error) {
	return func(int) (*FetchResult, error) {
		return &FetchResult{HTML: html, EngineName: name, StatusCode: 200}, nil
	}
}

func fail(code string) func(int) (*FetchResult, error) {
	return func(int) (*FetchResult, error) {
		return nil, models.NewFetchError(code, "stub failure", nil)
	}
}

func TestCategorize(t *testing.T) {
	existing := models.NewFetchError(models.ErrCodeBrowserCrash, "crash", nil)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, models.ErrCodeTimeout},
		{"canceled", context.Canceled, models.ErrCodeTimeout},
		{"wrapped existing", errors.Join(errors.New("outer"), existing), models.ErrCodeBrowserCrash},
		{"plain", errors.New("boom"), models.ErrCodeNavigation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.err, models.ErrCodeNavigation, "msg")
			if got.Code != tt.want {
				t.Errorf("Categorize() code = %s, want %s", got.Code, tt.want)
			}
		})
	}
	if Categorize(nil, models.ErrCodeNavigation, "msg") != nil {
		t.Error("Categorize(nil) should be nil")
	}
}

func TestRetry(t *testing.T) {
	req := &FetchRequest{URL: "https://shop.test/"}

	t.Run("succeeds on second attempt", func(t *testing.T) {
		e := &stubEngine{name: "stub", fn: func(n int) (*FetchResult, error) {
			if n == 1 {
				return nil, models.NewFetchError(models.ErrCodeTimeout, "slow", nil)
			}
			return &FetchResult{HTML: "<html></html>"}, nil
		}}
		res, attempts, err := Retry(context.Background(), e, req, RetryPolicy{Attempts: 2})
		if err != nil || res == nil {
			t.Fatalf("Retry() error = %v", err)
		}
		if attempts != 2 {
			t.Errorf("attempts = %d, want 2", attempts)
		}
	})

	t.Run("exhausted timeout", func(t *testing.T) {
		e := &stubEngine{name: "stub", fn: fail(models.ErrCodeTimeout)}
		_, attempts, err := Retry(context.Background(), e, req, RetryPolicy{Attempts: 2})
		var fe *models.FetchError
		if !errors.As(err, &fe) || !fe.IsTimeout() {
			t.Fatalf("Retry() error = %v, want timeout FetchError", err)
		}
		if got := fe.Note(attempts); got != "timeout on attempt 2" {
			t.Errorf("Note() = %q", got)
		}
		if e.calls.Load() != 2 {
			t.Errorf("calls = %d, want 2", e.calls.Load())
		}
	})

	t.Run("plain errors become transport failures", func(t *testing.T) {
		e := &stubEngine{name: "stub", fn: func(int) (*FetchResult, error) {
			return nil, errors.New("connection reset")
		}}
		_, _, err := Retry(context.Background(), e, req, RetryPolicy{Attempts: 1})
		var fe *models.FetchError
		if !errors.As(err, &fe) || fe.Code != models.ErrCodeTransport {
			t.Fatalf("Retry() error = %v, want TRANSPORT_FAILED", err)
		}
		if got := fe.Note(1); got != "error: transport" {
			t.Errorf("Note() = %q", got)
		}
	})

	t.Run("invalid input is not retried", func(t *testing.T) {
		e := &stubEngine{name: "stub", fn: fail(models.ErrCodeInvalidInput)}
		_, attempts, err := Retry(context.Background(), e, req, RetryPolicy{Attempts: 3})
		if err == nil || attempts != 1 {
			t.Errorf("attempts = %d, err = %v; want 1 attempt and an error", attempts, err)
		}
	})

	t.Run("zero attempts means one", func(t *testing.T) {
		e := &stubEngine{name: "stub", fn: fail(models.ErrCodeNavigation)}
		_, attempts, _ := Retry(context.Background(), e, req, RetryPolicy{})
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})
}

func TestDispatcher_EscalatesAndRemembers(t *testing.T) {
	fast := &stubEngine{name: "http", fn: fail(models.ErrCodeNavigation)}
	slow := &stubEngine{name: "rod", delay: 20 * time.Millisecond, fn: succeed("rod", "<p>rendered</p>")}

	mem := NewDomainMemory(time.Hour)
	d := NewDispatcher([]Engine{fast, slow}, []time.Duration{0, 10 * time.Millisecond}, mem)

	res, err := d.Fetch(context.Background(), &FetchRequest{URL: "https://shop.test/a"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.EngineName != "rod" {
		t.Errorf("winner = %q, want rod", res.EngineName)
	}
	if got := mem.Get("shop.test"); got != "rod" {
		t.Errorf("memory = %q, want rod", got)
	}

	// The remembered engine is used directly for the same host.
	if _, err := d.Fetch(context.Background(), &FetchRequest{URL: "https://shop.test/b"}); err != nil {
		t.Fatal(err)
	}
	if fast.calls.Load() != 1 {
		t.Errorf("http engine called %d times, want 1", fast.calls.Load())
	}
}

func TestDispatcher_AcceptRejectsShellPages(t *testing.T) {
	shell := &stubEngine{name: "http", fn: succeed("http", "<div id=app></div>")}
	full := &stubEngine{name: "rod", delay: 10 * time.Millisecond, fn: succeed("rod", "<a href=/products/x>X</a>")}

	d := NewDispatcher([]Engine{shell, full}, nil, nil)
	d.SetAccept(func(r *FetchResult) bool { return r.EngineName != "http" })

	res, err := d.Fetch(context.Background(), &FetchRequest{URL: "https://shop.test/"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.EngineName != "rod" {
		t.Errorf("winner = %q, want rod", res.EngineName)
	}
}

func TestDispatcher_AllFail(t *testing.T) {
	d := NewDispatcher([]Engine{
		&stubEngine{name: "http", fn: fail(models.ErrCodeNavigation)},
		&stubEngine{name: "rod", fn: fail(models.ErrCodeTimeout)},
	}, nil, nil)

	_, err := d.Fetch(context.Background(), &FetchRequest{URL: "https://shop.test/"})
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Fetch() error = %v, want FetchError", err)
	}
}

func TestDomainMemory_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := NewDomainMemory(time.Minute)
	mem.now = func() time.Time { return now }

	mem.Set("shop.test", "http")
	if got := mem.Get("shop.test"); got != "http" {
		t.Fatalf("Get() = %q, want http", got)
	}
	now = now.Add(2 * time.Minute)
	if got := mem.Get("shop.test"); got != "" {
		t.Errorf("Get() after TTL = %q, want empty", got)
	}
	if mem.Len() != 0 {
		t.Errorf("expired entry not dropped")
	}

	var nilMem *DomainMemory
	nilMem.Set("a", "b")
	if nilMem.Get("a") != "" {
		t.Error("nil memory should remember nothing")
	}
}

func TestPolite_SpacesSameHost(t *testing.T) {
	p := NewPolite(100 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := p.Wait(ctx, "https://shop.test/page"); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("two requests to one host took %v, want >= ~100ms", elapsed)
	}

	if err := p.Wait(ctx, "https://other.test/"); err != nil {
		t.Fatal(err)
	}
	if len(p.limiters) != 2 {
		t.Errorf("limiters = %d, want one per host", len(p.limiters))
	}
}

func TestPolite_Disabled(t *testing.T) {
	p := NewPolite(0)
	inner := &stubEngine{name: "http", fn: succeed("http", "")}
	e := p.Wrap(inner)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := e.Fetch(context.Background(), &FetchRequest{URL: "https://shop.test/"}); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) > time.Second {
		t.Error("disabled politeness should not delay requests")
	}
	if e.Name() != "http" {
		t.Errorf("wrapped Name() = %q", e.Name())
	}
}

func TestHTTPEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if r.Header.Get("User-Agent") != "radar-test" {
				http.Error(w, "bad ua", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><head><title> Shop </title></head><body>hi</body></html>`))
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/forbidden":
			http.Error(w, "no", http.StatusForbidden)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Header().Set("Content-Type", "text/html")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := newHTTPEngine(&http.Client{}, HTTPOptions{UserAgent: "radar-test"})

	res, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/ok"})
	if err != nil {
		t.Fatalf("Fetch(/ok) error: %v", err)
	}
	if res.Title != "Shop" || res.StatusCode != 200 || res.EngineName != "http" {
		t.Errorf("Fetch(/ok) = %+v", res)
	}

	tests := []struct {
		path    string
		timeout time.Duration
		code    string
	}{
		{"/missing", 0, models.ErrCodeNotFound},
		{"/gone", 0, models.ErrCodeNotFound},
		{"/forbidden", 0, models.ErrCodeNavigation},
		{"/json", 0, models.ErrCodeNavigation},
		{"/slow", 20 * time.Millisecond, models.ErrCodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + tt.path, Timeout: tt.timeout})
			var fe *models.FetchError
			if !errors.As(err, &fe) || fe.Code != tt.code {
				t.Errorf("Fetch(%s) error = %v, want code %s", tt.path, err, tt.code)
			}
		})
	}
}

func TestRetry_DeadPathFetchedOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := newHTTPEngine(&http.Client{}, HTTPOptions{})
	_, attempts, err := Retry(context.Background(), e, &FetchRequest{URL: srv.URL + "/collections/sale"}, RetryPolicy{Attempts: 3})
	var fe *models.FetchError
	if !errors.As(err, &fe) || fe.Code != models.ErrCodeNotFound {
		t.Fatalf("Retry() error = %v, want NOT_FOUND", err)
	}
	if attempts != 1 || hits.Load() != 1 {
		t.Errorf("attempts = %d, hits = %d; want 1 and 1", attempts, hits.Load())
	}
	if got := fe.Note(attempts); got != "error: not found" {
		t.Errorf("Note() = %q", got)
	}
}

func TestBuild(t *testing.T) {
	cfg := config.Load()

	cfg.Engine.Mode = "http"
	e, err := Build(cfg, nil, nil)
	if err != nil || e.Name() != "http" {
		t.Fatalf("Build(http) = %v, %v", e, err)
	}

	cfg.Engine.Mode = "auto"
	e, err = Build(cfg, nil, nil)
	if err != nil || e.Name() != "auto" {
		t.Fatalf("Build(auto) = %v, %v", e, err)
	}

	cfg.Engine.Mode = "warp"
	if _, err := Build(cfg, nil, nil); err == nil {
		t.Error("Build(warp) should fail")
	}

	if NeedsBrowser("http") || !NeedsBrowser("rod-stealth") {
		t.Error("NeedsBrowser mismatch")
	}
}
