package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent  = "webaudit-cli (site audit; +https://github.com/vqhuy-dev/webaudit-cli)"
	maxBodyBytes      = 2 << 20 // 2 MiB page snapshot is plenty for signature scans
	maxRedirectsToLog = 10
)

// FetchResult captures one HTTP probe: final status, whether any redirect
// occurred and where it landed, response headers, and a bounded body
// snapshot for markup-based checks.
type FetchResult struct {
	StatusCode int
	FinalURL   string
	Redirected bool
	Header     http.Header
	Body       string

	// Leaf certificate metadata surfaced from the transport when the
	// probe went over TLS. Informational only; no chain verification
	// beyond the default transport's.
	TLSExpiry string
	TLSIssuer string
}

// Reachable reports whether the probe got any well-formed HTTP answer.
// A 4xx/5xx still proves the endpoint is alive; only transport failures
// count as unreachable.
func (f *FetchResult) Reachable() bool {
	return f != nil && f.StatusCode > 0
}

// OK reports a 2xx final status.
func (f *FetchResult) OK() bool {
	return f != nil && f.StatusCode >= 200 && f.StatusCode < 300
}

// Client is the shared probe client: uniform timeout, global politeness
// rate limit, redirect-aware GET plus a reduced-fidelity HEAD fallback.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// ClientConfig carries the runtime knobs for the probe client.
type ClientConfig struct {
	Timeout   time.Duration
	RateLimit int // requests per second; <=0 disables limiting
	UserAgent string
}

// NewClient builds a probe client. The zero-value config yields a 15s
// timeout, a 4 req/s limiter and the default user agent.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	} else {
		limiter = rate.NewLimiter(rate.Limit(4), 4)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirectsToLog {
					return fmt.Errorf("stopped after %d redirects", maxRedirectsToLog)
				}
				return nil
			},
		},
		limiter:   limiter,
		userAgent: cfg.UserAgent,
	}
}

// Fetch issues a redirect-following GET and returns the final response
// with a bounded body snapshot.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Decode to UTF-8 (Content-Type, BOM or meta sniffing) so the markup
	// checks always see normalized text. A partial body still serves the
	// signature scans, so a mid-stream read error is not fatal.
	limited := io.LimitReader(resp.Body, maxBodyBytes)
	decoded, cerr := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if cerr != nil {
		decoded = limited
	}
	body, _ := io.ReadAll(decoded)

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	result := &FetchResult{
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
		Redirected: normalizeProbeURL(finalURL) != normalizeProbeURL(rawURL),
		Header:     resp.Header,
		Body:       string(body),
	}
	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		cert := resp.TLS.PeerCertificates[0]
		result.TLSExpiry = cert.NotAfter.Format(time.RFC3339)
		result.TLSIssuer = cert.Issuer.CommonName
	}
	return result, nil
}

// Head is the reduced-fidelity fallback: it establishes reachability when
// a full GET failed (some servers reject GETs from non-browser agents)
// but cannot observe redirect details.
func (c *Client) Head(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return &FetchResult{
		StatusCode: resp.StatusCode,
		FinalURL:   rawURL,
		Header:     resp.Header,
	}, nil
}

// normalizeProbeURL strips a trailing slash so http://example.com and
// http://example.com/ are not reported as a redirect.
func normalizeProbeURL(u string) string {
	if len(u) > 0 && u[len(u)-1] == '/' {
		return u[:len(u)-1]
	}
	return u
}
