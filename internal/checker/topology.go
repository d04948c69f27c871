package checker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// WWWRedirection classifies how a site canonicalizes its host form,
// evaluated over the https pair only.
const (
	WWWRedirectToWWW    = "to-www"
	WWWRedirectToNonWWW = "to-non-www"
	WWWRedirectBothWork = "both-work"
	WWWRedirectUnclear  = "unclear"
)

// TopologyCell is one probe of the scheme × host-form matrix. A failed
// fetch is a valid cell value, never an absent cell.
type TopologyCell struct {
	Scheme     string `json:"scheme"`
	WWW        bool   `json:"www"`
	URL        string `json:"url"`
	Reachable  bool   `json:"reachable"`
	Redirected bool   `json:"redirected"`
	FinalURL   string `json:"final_url,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`

	// header keeps the response headers of this cell for CDN signature
	// matching; it is not part of the serialized matrix.
	header map[string][]string
}

// TopologyAnalysis is the topology checker's analysis payload.
type TopologyAnalysis struct {
	Cells                [4]TopologyCell `json:"cells"`
	HTTPSWorking         bool            `json:"https_working"`
	HTTPRedirectsToHTTPS bool            `json:"http_redirects_to_https"`
	WWWRedirection       string          `json:"www_redirection"`
	PreferredURL         string          `json:"preferred_url,omitempty"`
	IP                   string          `json:"ip,omitempty"`
	CDN                  string          `json:"cdn,omitempty"`
	CDNSignal            string          `json:"cdn_signal,omitempty"` // "header" or "ip"
}

// cdnHeaderSignatures maps provider-specific response header names to
// provider labels. Header name matching is case-insensitive (http.Header
// canonicalizes on Get).
var cdnHeaderSignatures = []struct {
	Header   string
	Provider string
}{
	{"CF-Ray", "Cloudflare"},
	{"CF-Cache-Status", "Cloudflare"},
	{"X-Amz-Cf-Id", "Amazon CloudFront"},
	{"X-Amz-Cf-Pop", "Amazon CloudFront"},
	{"X-Fastly-Request-ID", "Fastly"},
	{"Fastly-Debug-Digest", "Fastly"},
	{"X-Akamai-Transformed", "Akamai"},
	{"X-Akamai-Request-ID", "Akamai"},
	{"X-Vercel-Id", "Vercel"},
	{"X-Vercel-Cache", "Vercel"},
	{"X-Nf-Request-Id", "Netlify"},
	{"X-Sucuri-ID", "Sucuri"},
	{"X-Sucuri-Cache", "Sucuri"},
	{"X-Bunny-Cache-State", "bunny.net"},
	{"X-CDN-Pullzone", "bunny.net"},
}

// cdnIPPrefixes maps known provider address space to provider labels by
// leading dotted-octet groups. Exact prefix match only; no suppression.
var cdnIPPrefixes = []struct {
	Prefix   string
	Provider string
}{
	{"104.16.", "Cloudflare"},
	{"104.17.", "Cloudflare"},
	{"104.18.", "Cloudflare"},
	{"104.19.", "Cloudflare"},
	{"104.20.", "Cloudflare"},
	{"104.21.", "Cloudflare"},
	{"104.22.", "Cloudflare"},
	{"172.64.", "Cloudflare"},
	{"172.65.", "Cloudflare"},
	{"172.66.", "Cloudflare"},
	{"172.67.", "Cloudflare"},
	{"188.114.", "Cloudflare"},
	{"141.101.", "Cloudflare"},
	{"162.158.", "Cloudflare"},
	{"151.101.", "Fastly"},
	{"199.232.", "Fastly"},
	{"13.224.", "Amazon CloudFront"},
	{"13.225.", "Amazon CloudFront"},
	{"13.226.", "Amazon CloudFront"},
	{"13.227.", "Amazon CloudFront"},
	{"52.84.", "Amazon CloudFront"},
	{"52.85.", "Amazon CloudFront"},
	{"54.230.", "Amazon CloudFront"},
	{"54.239.", "Amazon CloudFront"},
	{"99.84.", "Amazon CloudFront"},
	{"99.86.", "Amazon CloudFront"},
	{"108.138.", "Amazon CloudFront"},
	{"205.251.", "Amazon CloudFront"},
	{"23.192.", "Akamai"},
	{"23.193.", "Akamai"},
	{"23.194.", "Akamai"},
	{"23.195.", "Akamai"},
	{"2.16.", "Akamai"},
	{"95.100.", "Akamai"},
	{"184.24.", "Akamai"},
	{"75.2.", "Netlify"},
	{"99.83.", "Netlify"},
	{"76.76.21.", "Vercel"},
	{"192.124.249.", "Sucuri"},
}

// TopologyChecker probes the 2×2 scheme × host-form matrix and derives
// redirect topology and CDN signals.
type TopologyChecker struct {
	Client   *Client
	Resolver *Resolver
}

func (t *TopologyChecker) ID() string    { return CheckTopology }
func (t *TopologyChecker) Label() string { return "URL & Redirect Topology" }

// probeOrder is the fixed cell order: https-non-www, https-www,
// http-non-www, http-www.
var probeOrder = [4]struct {
	Scheme string
	WWW    bool
}{
	{"https", false},
	{"https", true},
	{"http", false},
	{"http", true},
}

// Check probes all four cells (concurrently; the matrix and its derived
// classifications are order-independent) and derives the topology
// analysis.
func (t *TopologyChecker) Check(ctx context.Context, target Target) CheckResult {
	analysis := &TopologyAnalysis{WWWRedirection: WWWRedirectUnclear}

	g, probeCtx := errgroup.WithContext(ctx)
	for i, p := range probeOrder {
		cell := &analysis.Cells[i]
		cell.Scheme = p.Scheme
		cell.WWW = p.WWW
		cell.URL = target.URL(p.Scheme, p.WWW)

		g.Go(func() error {
			t.probeCell(probeCtx, cell)
			return nil
		})
	}
	_ = g.Wait()

	t.analyze(ctx, target, analysis)

	result := CheckResult{
		CheckID:   CheckTopology,
		Analysis:  analysis,
		CheckedAt: time.Now().UTC(),
	}
	result.Status, result.Details = t.summarize(analysis)
	return result
}

// probeCell fetches one cell, retrying once in reduced-fidelity mode
// (HEAD, no redirect detail) before marking the cell unreachable.
func (t *TopologyChecker) probeCell(ctx context.Context, cell *TopologyCell) {
	res, err := t.Client.Fetch(ctx, cell.URL)
	if err != nil {
		res, err = t.Client.Head(ctx, cell.URL)
		if err != nil {
			cell.Error = err.Error()
			return
		}
		cell.Reachable = true
		cell.StatusCode = res.StatusCode
		cell.header = res.Header
		return
	}

	cell.Reachable = true
	cell.Redirected = res.Redirected
	cell.FinalURL = res.FinalURL
	cell.StatusCode = res.StatusCode
	cell.header = res.Header
}

func (t *TopologyChecker) analyze(ctx context.Context, target Target, a *TopologyAnalysis) {
	httpsNonWWW := &a.Cells[0]
	httpsWWW := &a.Cells[1]
	httpNonWWW := &a.Cells[2]
	httpWWW := &a.Cells[3]

	a.HTTPSWorking = httpsNonWWW.Reachable || httpsWWW.Reachable

	for _, cell := range []*TopologyCell{httpNonWWW, httpWWW} {
		if cell.Redirected && strings.HasPrefix(cell.FinalURL, "https:") {
			a.HTTPRedirectsToHTTPS = true
			break
		}
	}

	// www classification over the https pair only.
	switch {
	case httpsWWW.Redirected && httpsNonWWW.Reachable && !httpsNonWWW.Redirected:
		a.WWWRedirection = WWWRedirectToNonWWW
		a.PreferredURL = httpsNonWWW.FinalURL
	case httpsNonWWW.Redirected && httpsWWW.Reachable && !httpsWWW.Redirected:
		a.WWWRedirection = WWWRedirectToWWW
		a.PreferredURL = httpsWWW.FinalURL
	case httpsNonWWW.Reachable && httpsWWW.Reachable && !httpsNonWWW.Redirected && !httpsWWW.Redirected:
		a.WWWRedirection = WWWRedirectBothWork
	default:
		a.WWWRedirection = WWWRedirectUnclear
	}

	a.CDN, a.CDNSignal = detectCDNByHeader(a.Cells[:])
	if a.CDN == "" && t.Resolver != nil {
		ip, err := t.Resolver.LookupA(ctx, target.Domain)
		if err == nil && ip != "" {
			a.IP = ip
			for _, entry := range cdnIPPrefixes {
				if strings.HasPrefix(ip, entry.Prefix) {
					a.CDN = entry.Provider
					a.CDNSignal = "ip"
					break
				}
			}
		}
	}
}

// detectCDNByHeader scans the captured cell headers against the
// provider signature table. Matching is case-insensitive.
func detectCDNByHeader(cells []TopologyCell) (string, string) {
	for _, cell := range cells {
		if cell.header == nil {
			continue
		}
		h := http.Header(cell.header)
		for _, sig := range cdnHeaderSignatures {
			if h.Get(sig.Header) != "" {
				return sig.Provider, "header"
			}
		}
	}
	return "", ""
}

func (t *TopologyChecker) summarize(a *TopologyAnalysis) (Status, []string) {
	var details []string
	status := StatusSuccess

	if a.HTTPSWorking {
		details = append(details, "HTTPS is working")
	} else {
		status = StatusError
		details = append(details, "Site is not reachable over HTTPS")
	}

	if a.HTTPRedirectsToHTTPS {
		details = append(details, "HTTP redirects to HTTPS")
	} else if a.HTTPSWorking {
		if status == StatusSuccess {
			status = StatusWarning
		}
		details = append(details, "HTTP does not redirect to HTTPS")
	}

	switch a.WWWRedirection {
	case WWWRedirectToNonWWW:
		details = append(details, fmt.Sprintf("www redirects to non-www (preferred: %s)", a.PreferredURL))
	case WWWRedirectToWWW:
		details = append(details, fmt.Sprintf("non-www redirects to www (preferred: %s)", a.PreferredURL))
	case WWWRedirectBothWork:
		if status == StatusSuccess {
			status = StatusWarning
		}
		details = append(details, "Both www and non-www respond without redirecting; pick one canonical host")
	default:
		details = append(details, "www/non-www redirection behavior is unclear")
	}

	unreachable := 0
	for _, cell := range a.Cells {
		if !cell.Reachable {
			unreachable++
		}
	}
	if unreachable > 0 {
		details = append(details, fmt.Sprintf("%d of 4 URL variants were unreachable", unreachable))
	}

	if a.CDN != "" {
		details = append(details, fmt.Sprintf("CDN detected: %s (via %s)", a.CDN, a.CDNSignal))
	} else if a.IP != "" {
		details = append(details, fmt.Sprintf("Resolved IP: %s (no known CDN range)", a.IP))
	}

	return status, details
}
