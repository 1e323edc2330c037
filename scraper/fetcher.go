package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/visper-inc/cartoondl/config"
	"golang.org/x/net/proxy"
)

// Fetcher retrieves a single upstream page.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*Page, error)
}

// Page is a fetched upstream document, already decompressed and
// transcoded to UTF-8.
type Page struct {
	HTML        []byte
	StatusCode  int
	FinalURL    string
	ContentType string
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
}

// HTTPFetcher fetches pages with a fixed set of browser-like headers.
// It is safe for concurrent use; connections are pooled by the transport.
type HTTPFetcher struct {
	client  *http.Client
	headers map[string]string
	timeout time.Duration
	maxBody int64
}

// NewHTTPFetcher builds a fetcher from the fetch configuration.
// An unparseable or unsupported proxy URL is an error.
func NewHTTPFetcher(cfg config.FetchConfig) (*HTTPFetcher, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 20
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		headers: cfg.Headers(),
		timeout: cfg.Timeout,
		maxBody: maxBody,
	}, nil
}

// Fetch performs a GET on targetURL. Transport failures, timeouts and non-2xx
// responses are all returned as errors; the caller treats them alike.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	// Explicit Accept-Encoding disables transparent gzip in the transport.
	req.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: targetURL}
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeBody(resp.Body, resp.Header.Get("Content-Encoding"), contentType, f.maxBody)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return &Page{
		HTML:        body,
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
	}, nil
}

// CloseIdleConnections releases pooled upstream connections.
func (f *HTTPFetcher) CloseIdleConnections() {
	f.client.CloseIdleConnections()
}

// newTransport wires the proxy and the TLS fingerprint into one transport.
func newTransport(cfg config.FetchConfig) (*http.Transport, error) {
	base := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	var dialer proxy.ContextDialer = base

	transport := &http.Transport{
		DialContext:         base.DialContext,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   false,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("fetch: parse proxy: %w", err)
		}
		switch proxyURL.Scheme {
		case "http", "https":
			transport.Proxy = http.ProxyURL(proxyURL)
		case "socks5", "socks5h":
			var auth *proxy.Auth
			if proxyURL.User != nil {
				auth = &proxy.Auth{User: proxyURL.User.Username()}
				auth.Password, _ = proxyURL.User.Password()
			}
			socks, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, base)
			if err != nil {
				return nil, fmt.Errorf("fetch: socks5 proxy: %w", err)
			}
			cd, ok := socks.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("fetch: socks5 dialer does not support contexts")
			}
			dialer = cd
			transport.DialContext = cd.DialContext
		default:
			return nil, fmt.Errorf("fetch: unsupported proxy scheme %q", proxyURL.Scheme)
		}
	}

	if cfg.ChromeTLS {
		transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, dialer, network, addr)
		}
	}

	return transport, nil
}
