package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Farouk858/product-radar/cache"
	"github.com/Farouk858/product-radar/config"
	"github.com/Farouk858/product-radar/models"
	"github.com/Farouk858/product-radar/radar"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

type stubScanner struct {
	calls atomic.Int32
	last  models.BrandConfig
}

func (s *stubScanner) ScanBrand(_ context.Context, b models.BrandConfig) radar.BrandScan {
	s.calls.Add(1)
	s.last = b
	return radar.BrandScan{
		Brand:    b.Name,
		Products: []models.Product{{Name: "Classic Cap", URL: b.URL + "/products/cap", Score: 4, Status: models.StatusAvailable}},
		Notes:    []string{"Page signals: bestseller"},
		Engines:  []string{"stub"},
		Elapsed:  5 * time.Millisecond,
	}
}

type stubPool struct{ stats models.PoolStats }

func (p stubPool) PoolStats() models.PoolStats { return p.stats }

func newTestRouter(t *testing.T, sc *stubScanner, pool *stubPool) (http.Handler, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		Paths:     config.PathsConfig{State: filepath.Join(t.TempDir(), "state.json")},
		Server:    config.ServerConfig{Mode: "test"},
		Auth:      config.AuthConfig{Enabled: true, APIKeys: []string{testKey}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		Limits:    config.LimitsConfig{PageCap: 40, BrandCap: 30},
	}
	deps := Deps{
		Scanner:    sc,
		Cache:      cache.New(8, time.Minute),
		EngineName: "rod",
		StartTime:  time.Now(),
	}
	if pool != nil {
		deps.Pool = *pool
	}
	return NewRouter(cfg, deps), cfg
}

func do(t *testing.T, h http.Handler, method, path string, body any, key string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, &stubScanner{}, &stubPool{stats: models.PoolStats{MaxPages: 4, ActivePages: 4}})

	w := do(t, h, http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "degraded", resp.Status)
	require.Equal(t, "rod", resp.Engine)
	require.NotNil(t, resp.PoolStats)
	require.Equal(t, 4, resp.PoolStats.ActivePages)
}

func TestHealth_NoBrowser(t *testing.T) {
	h, _ := newTestRouter(t, &stubScanner{}, nil)

	w := do(t, h, http.MethodGet, "/api/v1/health", nil, "")
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.Nil(t, resp.PoolStats)
}

func TestAuth(t *testing.T) {
	h, _ := newTestRouter(t, &stubScanner{}, nil)

	w := do(t, h, http.MethodGet, "/api/v1/snapshot", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/snapshot", nil, "wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{
		Paths:     config.PathsConfig{State: filepath.Join(t.TempDir(), "state.json")},
		Server:    config.ServerConfig{Mode: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1},
	}
	h := NewRouter(cfg, Deps{Scanner: &stubScanner{}})

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/snapshot", nil, "").Code)
	w := do(t, h, http.MethodGet, "/api/v1/snapshot", nil, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSnapshot(t *testing.T) {
	h, cfg := newTestRouter(t, &stubScanner{}, nil)
	require.NoError(t, os.WriteFile(cfg.Paths.State, []byte(`{
  "Acme": ["Legacy Hoodie", {"name": "Classic Cap", "url": "https://acme.test/products/cap", "score": "4.5", "status": "available"}]
}`), 0o644))

	w := do(t, h, http.MethodGet, "/api/v1/snapshot", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Brands["Acme"], 2)
	require.Equal(t, models.Product{Name: "Legacy Hoodie", Status: models.StatusUnknown}, resp.Brands["Acme"][0])
	require.Equal(t, 4.5, resp.Brands["Acme"][1].Score)

	w = do(t, h, http.MethodGet, "/api/v1/snapshot/acme", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/snapshot/unknown", nil, testKey)
	require.Equal(t, http.StatusNotFound, w.Code)
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	require.Equal(t, models.ErrCodeNotFound, errResp.Error.Code)
}

func TestSnapshot_Corrupt(t *testing.T) {
	h, cfg := newTestRouter(t, &stubScanner{}, nil)
	require.NoError(t, os.WriteFile(cfg.Paths.State, []byte(`{"Acme": [true]}`), 0o644))

	w := do(t, h, http.MethodGet, "/api/v1/snapshot", nil, testKey)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExtract(t *testing.T) {
	h, _ := newTestRouter(t, &stubScanner{}, nil)

	body := models.ExtractRequest{
		URL:  "https://acme.test/collections/bestsellers",
		Hint: "bestsellers",
		HTML: `<html><body><ul><li><a href="/products/classic-cap">Classic Cap</a></li></ul></body></html>`,
	}
	w := do(t, h, http.MethodPost, "/api/v1/extract", body, testKey)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, []models.Product{{
		Name:   "Classic Cap",
		URL:    "https://acme.test/products/classic-cap",
		Score:  4,
		Status: models.StatusAvailable,
	}}, resp.Candidates)
}

func TestExtract_Invalid(t *testing.T) {
	h, _ := newTestRouter(t, &stubScanner{}, nil)

	w := do(t, h, http.MethodPost, "/api/v1/extract", map[string]string{"html": "<p>x</p>"}, testKey)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
}

func TestScan(t *testing.T) {
	sc := &stubScanner{}
	h, _ := newTestRouter(t, sc, nil)

	req := models.ScanRequest{Name: "Palace", URL: "https://palace.test", MaxAge: 60}
	w := do(t, h, http.MethodPost, "/api/v1/scan", req, testKey)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "miss", resp.CacheStatus)
	require.Len(t, resp.Products, 1)
	require.Equal(t, []string{"Page signals: bestseller"}, resp.Notes)
	require.NotEmpty(t, sc.last.Alts, "known brands pick up built-in alts")

	w = do(t, h, http.MethodPost, "/api/v1/scan", req, testKey)
	var cached models.ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cached))
	require.Equal(t, "hit", cached.CacheStatus)
	require.Equal(t, int32(1), sc.calls.Load())

	req.MaxAge = 0
	w = do(t, h, http.MethodPost, "/api/v1/scan", req, testKey)
	var uncached models.ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uncached))
	require.Empty(t, uncached.CacheStatus)
	require.Equal(t, int32(2), sc.calls.Load())
}

func TestScan_Invalid(t *testing.T) {
	h, _ := newTestRouter(t, &stubScanner{}, nil)
	w := do(t, h, http.MethodPost, "/api/v1/scan", map[string]string{"name": "Acme", "url": "not a url"}, testKey)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
