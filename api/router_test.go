package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/visper-inc/cartoondl/config"
	"github.com/visper-inc/cartoondl/models"
	"github.com/visper-inc/cartoondl/scraper"
)

const upstreamPage = `<!DOCTYPE html><html><head>
<meta property="og:title" content="Tom and Jerry">
<meta name="description" content="Classic">
</head><body>
<h1 class="post-title">Tom and Jerry (Sinhala)</h1>
<button class="watch-online-btn" onclick="openWatchOnlineWithQuality('https://files.example/b.mp4','720p')">Watch</button>
</body></html>`

func testConfig(prefix string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Fetch: config.FetchConfig{
			AllowedPrefix:  prefix,
			UserAgent:      config.DefaultUserAgent,
			Cookie:         config.DefaultCookie,
			AcceptLanguage: config.DefaultAcceptLanguage,
			Timeout:        2 * time.Second,
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 0},
	}
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(upstreamPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	f, err := scraper.NewHTTPFetcher(cfg.Fetch)
	if err != nil {
		t.Fatalf("NewHTTPFetcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRouter(ctx, f, nil, cfg, time.Now())
}

func serve(h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_EndToEnd(t *testing.T) {
	up := newUpstream(t)
	r := newTestRouter(t, testConfig(up.URL+"/"))

	w := serve(r, http.MethodGet, "/api/download?url="+url.QueryEscape(up.URL+"/tom-and-jerry/"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got models.DownloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Tom and Jerry" || got.Description != "Classic" || got.Download != "https://files.example/b.mp4" {
		t.Errorf("unexpected response: %+v", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRouter_UpstreamErrorIs500(t *testing.T) {
	up := newUpstream(t)
	r := newTestRouter(t, testConfig(up.URL+"/"))

	w := serve(r, http.MethodGet, "/api/download?url="+url.QueryEscape(up.URL+"/missing/"), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Status || body.Error != "Scrape failed: Request failed with status code 404" {
		t.Errorf("body = %+v", body)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, testConfig("https://cartoons.lk/"))

	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead} {
		w := serve(r, m, "/api/download?url=https%3A%2F%2Fcartoons.lk%2Fx%2F", nil)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status = %d, want 405", m, w.Code)
			continue
		}
		if m == http.MethodHead {
			continue
		}
		var body models.ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &body)
		if body.Error != "Method not allowed" {
			t.Errorf("%s: error = %q", m, body.Error)
		}
	}
}

func TestRouter_NotFound(t *testing.T) {
	r := newTestRouter(t, testConfig("https://cartoons.lk/"))
	w := serve(r, http.MethodGet, "/api/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, testConfig("https://cartoons.lk/"))
	w := serve(r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Version == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestRouter_Auth(t *testing.T) {
	cfg := testConfig("https://cartoons.lk/")
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	r := newTestRouter(t, cfg)

	// Validation runs after auth, so a missing url distinguishes "passed auth".
	if w := serve(r, http.MethodGet, "/api/download", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/download", http.Header{"X-Api-Key": {"wrong"}}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/download", http.Header{"Authorization": {"Bearer secret"}}); w.Code != http.StatusBadRequest {
		t.Errorf("bearer key: status = %d, want 400", w.Code)
	}
	// Health stays open.
	if w := serve(r, http.MethodGet, "/api/health", nil); w.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", w.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig("https://cartoons.lk/")
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	r := newTestRouter(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, http.MethodGet, "/api/download", nil).Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusBadRequest || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [400 400 429]", codes)
	}
}

func TestRouter_DefaultConfigNeverRateLimits(t *testing.T) {
	t.Setenv("CARTOONDL_RATE_RPS", "")
	t.Setenv("CARTOONDL_RATE_BURST", "")

	up := newUpstream(t)
	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Fetch.AllowedPrefix = up.URL + "/"
	r := newTestRouter(t, cfg)

	target := "/api/download?url=" + url.QueryEscape(up.URL+"/tom-and-jerry/")
	for i := 0; i < 25; i++ {
		if w := serve(r, http.MethodGet, target, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
}

func TestRouter_OversizedPageIs500(t *testing.T) {
	up := newUpstream(t)
	cfg := testConfig(up.URL + "/")
	cfg.Fetch.MaxBodyBytes = int64(len(upstreamPage) - 1)
	r := newTestRouter(t, cfg)

	w := serve(r, http.MethodGet, "/api/download?url="+url.QueryEscape(up.URL+"/tom-and-jerry/"), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &body)
	want := fmt.Sprintf("body exceeds %d bytes", cfg.Fetch.MaxBodyBytes)
	if !strings.HasPrefix(body.Error, "Scrape failed: ") || !strings.HasSuffix(body.Error, want) {
		t.Errorf("error = %q, want suffix %q", body.Error, want)
	}
}

func TestRouter_KeepsCallerRequestID(t *testing.T) {
	r := newTestRouter(t, testConfig("https://cartoons.lk/"))
	w := serve(r, http.MethodGet, "/api/health", http.Header{"X-Request-Id": {"abc-123"}})
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}
