package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultDoHEndpoint = "https://dns.google/resolve"

// dohAnswer mirrors the JSON answer shape of public DNS-over-HTTPS
// resolvers (Google, Cloudflare). Only A records are consumed.
type dohAnswer struct {
	Answer []struct {
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// Resolver performs A-record lookups over DNS-over-HTTPS. A missing
// Answer array means "IP unresolved", never a fault for the caller.
type Resolver struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewResolver builds a resolver against the given endpoint, defaulting
// to Google's public JSON API.
func NewResolver(endpoint string) *Resolver {
	if endpoint == "" {
		endpoint = defaultDoHEndpoint
	}
	return &Resolver{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LookupA resolves the first A record for host. An empty string with a
// nil error means the lookup succeeded but returned no A record.
func (r *Resolver) LookupA(ctx context.Context, host string) (string, error) {
	query := fmt.Sprintf("%s?name=%s&type=A", r.Endpoint, url.QueryEscape(host))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, query, nil)
	if err != nil {
		return "", fmt.Errorf("create DoH request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("DoH lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DoH lookup returned status %d", resp.StatusCode)
	}

	var answer dohAnswer
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&answer); err != nil {
		return "", fmt.Errorf("decode DoH answer: %w", err)
	}

	// Type 1 is an A record; CNAME chains appear alongside and are skipped.
	for _, a := range answer.Answer {
		if a.Type == 1 && a.Data != "" {
			return a.Data, nil
		}
	}
	return "", nil
}
