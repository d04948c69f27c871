package checker

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AgentPath pairs a path rule with the user-agent group it belongs to.
type AgentPath struct {
	UserAgent string `json:"user_agent"`
	Path      string `json:"path"`
}

// RobotsAnalysis is the robots checker's analysis payload.
type RobotsAnalysis struct {
	UserAgents      []string    `json:"user_agents"`
	DisallowedPaths []AgentPath `json:"disallowed_paths"`
	AllowedPaths    []AgentPath `json:"allowed_paths"`
	Sitemaps        []string    `json:"sitemaps"`
	CrawlDelay      *int        `json:"crawl_delay,omitempty"`
	HasWildcard     bool        `json:"has_wildcard"`
	Empty           bool        `json:"empty"`
}

// RobotsChecker fetches and parses /robots.txt.
type RobotsChecker struct {
	Client *Client
}

func (r *RobotsChecker) ID() string    { return CheckRobots }
func (r *RobotsChecker) Label() string { return "robots.txt" }

func (r *RobotsChecker) Check(ctx context.Context, target Target) CheckResult {
	robotsURL := target.URL("https", false) + "/robots.txt"

	res, err := r.Client.Fetch(ctx, robotsURL)
	if err != nil {
		return ErrorResult(CheckRobots, fmt.Errorf("fetch robots.txt: %w", err))
	}
	if !res.OK() {
		return ErrorResult(CheckRobots, fmt.Errorf("robots.txt returned status %d", res.StatusCode))
	}

	analysis := ParseRobots(res.Body)

	result := CheckResult{
		CheckID:   CheckRobots,
		Analysis:  analysis,
		CheckedAt: time.Now().UTC(),
	}
	result.Status, result.Details = summarizeRobots(analysis)
	return result
}

// ParseRobots parses a robots.txt body line by line. The most recently
// seen user-agent value scopes subsequent allow/disallow lines; sitemap
// and crawl-delay are global. Directives before any user-agent line are
// ignored.
func ParseRobots(body string) *RobotsAnalysis {
	analysis := &RobotsAnalysis{
		UserAgents:      []string{},
		DisallowedPaths: []AgentPath{},
		AllowedPaths:    []AgentPath{},
		Sitemaps:        []string{},
	}

	if strings.TrimSpace(body) == "" {
		analysis.Empty = true
		return analysis
	}

	seenAgents := make(map[string]bool)
	seenSitemaps := make(map[string]bool)
	currentAgent := ""

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)

		switch name {
		case "user-agent":
			currentAgent = value
			if value == "*" {
				analysis.HasWildcard = true
			}
			if value != "" && !seenAgents[value] {
				seenAgents[value] = true
				analysis.UserAgents = append(analysis.UserAgents, value)
			}
		case "disallow":
			if currentAgent != "" && value != "" {
				analysis.DisallowedPaths = append(analysis.DisallowedPaths, AgentPath{UserAgent: currentAgent, Path: value})
			}
		case "allow":
			if currentAgent != "" && value != "" {
				analysis.AllowedPaths = append(analysis.AllowedPaths, AgentPath{UserAgent: currentAgent, Path: value})
			}
		case "sitemap":
			if value != "" && !seenSitemaps[value] {
				seenSitemaps[value] = true
				analysis.Sitemaps = append(analysis.Sitemaps, value)
			}
		case "crawl-delay":
			// Non-numeric values are treated as absent, not as an error.
			if delay, err := strconv.Atoi(value); err == nil {
				analysis.CrawlDelay = &delay
			}
		}
	}

	return analysis
}

func summarizeRobots(a *RobotsAnalysis) (Status, []string) {
	if a.Empty {
		return StatusWarning, []string{"robots.txt file is empty"}
	}

	var details []string
	status := StatusSuccess

	details = append(details, fmt.Sprintf("%d user-agent group(s) declared", len(a.UserAgents)))
	if a.HasWildcard {
		details = append(details, "Wildcard user-agent (*) present")
	} else {
		status = StatusWarning
		details = append(details, "No wildcard user-agent group; most crawlers are unaddressed")
	}

	if len(a.DisallowedPaths) > 0 {
		details = append(details, fmt.Sprintf("%d disallow rule(s)", len(a.DisallowedPaths)))
	}
	if len(a.AllowedPaths) > 0 {
		details = append(details, fmt.Sprintf("%d allow rule(s)", len(a.AllowedPaths)))
	}

	if len(a.Sitemaps) > 0 {
		details = append(details, "Sitemap(s): "+strings.Join(a.Sitemaps, ", "))
	} else {
		if status == StatusSuccess {
			status = StatusWarning
		}
		details = append(details, "No sitemap declared in robots.txt")
	}

	if a.CrawlDelay != nil {
		details = append(details, fmt.Sprintf("Crawl-delay: %d", *a.CrawlDelay))
	}

	return status, details
}
