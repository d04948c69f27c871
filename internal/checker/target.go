package checker

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidTarget is the only fault that aborts a whole audit run: the
// caller-supplied input does not contain a resolvable hostname.
var ErrInvalidTarget = errors.New("target does not contain a valid hostname")

// Target is the normalized audit target: a bare domain with scheme,
// leading www., port and path stripped. Immutable for one audit run.
type Target struct {
	Domain string // normalized hostname, never prefixed with www.
	Raw    string // original caller input
}

// ParseTarget normalizes a caller-supplied domain string. It accepts
// bare domains, full URLs and host:port forms:
//   - example.com
//   - https://www.example.com/path
//   - example.com:8080
func ParseTarget(raw string) (Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Target{}, ErrInvalidTarget
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") {
		parsed, _ = url.Parse("http://" + trimmed)
	}

	host := ""
	if parsed != nil {
		host = parsed.Hostname()
	}
	if host == "" {
		// Manual fallback for inputs url.Parse rejects outright.
		host = strings.TrimPrefix(trimmed, "http://")
		host = strings.TrimPrefix(host, "https://")
		host = strings.Split(host, "/")[0]
		host = strings.Split(host, ":")[0]
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return Target{}, ErrInvalidTarget
	}

	return Target{Domain: host, Raw: raw}, nil
}

// URL builds a full URL for the target with the given scheme and
// optional www. prefix.
func (t Target) URL(scheme string, withWWW bool) string {
	host := t.Domain
	if withWWW {
		host = "www." + host
	}
	return scheme + "://" + host
}
