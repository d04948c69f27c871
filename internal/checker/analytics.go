package checker

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ProviderFingerprint records one provider's detection outcome: whether
// any signature matched, the de-duplicated identifiers extracted, and
// any provider-specific warnings.
type ProviderFingerprint struct {
	Provider    string   `json:"provider"`
	Found       bool     `json:"found"`
	Identifiers []string `json:"identifiers,omitempty"`
	Issues      []string `json:"issues,omitempty"`
}

// AnalyticsAnalysis is the analytics checker's analysis payload. Only
// found providers are listed.
type AnalyticsAnalysis struct {
	Trackers    []ProviderFingerprint `json:"trackers"`
	Consent     []ProviderFingerprint `json:"consent"`
	Retargeting []ProviderFingerprint `json:"retargeting"`
}

// AnalyticsChecker fetches the homepage and fingerprints embedded
// tracking, consent-management and retargeting services.
//
// The GA4/GTM duplicate heuristics assume the canonical loader pattern
// (one script reference plus one config/noscript reference, so two raw
// occurrences per identifier). Sites with alternate loading strategies
// can trigger false positives; the threshold is a heuristic, not a
// guarantee.
type AnalyticsChecker struct {
	Client *Client
}

func (a *AnalyticsChecker) ID() string    { return CheckAnalytics }
func (a *AnalyticsChecker) Label() string { return "Analytics & Tracking" }

func (a *AnalyticsChecker) Check(ctx context.Context, target Target) CheckResult {
	// No partial-credit reporting: if the page cannot be fetched at all
	// the whole check is an error with no fingerprint.
	res, err := a.Client.Fetch(ctx, target.URL("https", false))
	if err != nil {
		res, err = a.Client.Fetch(ctx, target.URL("http", false))
	}
	if err != nil {
		return ErrorResult(CheckAnalytics, fmt.Errorf("fetch page: %w", err))
	}
	if !res.OK() {
		return ErrorResult(CheckAnalytics, fmt.Errorf("page returned status %d", res.StatusCode))
	}

	analysis := DetectAnalytics(res.Body)

	result := CheckResult{
		CheckID:   CheckAnalytics,
		Analysis:  analysis,
		CheckedAt: time.Now().UTC(),
	}
	result.Status, result.Details = summarizeAnalytics(analysis)
	return result
}

// DetectAnalytics fingerprints the page markup. Pure function; safe to
// call with any string.
func DetectAnalytics(html string) *AnalyticsAnalysis {
	analysis := &AnalyticsAnalysis{
		Trackers:    []ProviderFingerprint{},
		Consent:     []ProviderFingerprint{},
		Retargeting: []ProviderFingerprint{},
	}

	for _, sig := range trackerSignatures {
		fp := matchProvider(html, sig)
		if !fp.Found {
			continue
		}
		switch sig.Provider {
		case "Google Analytics 4":
			fp.Issues = append(fp.Issues, duplicateIDIssues(html, ga4IDPattern, "GA4 measurement ID")...)
		case "Google Tag Manager":
			fp.Issues = append(fp.Issues, duplicateIDIssues(html, gtmIDPattern, "GTM container ID")...)
			if len(fp.Identifiers) > 1 {
				fp.Issues = append(fp.Issues,
					fmt.Sprintf("%d distinct GTM containers present; one container per site is typical", len(fp.Identifiers)))
			}
		case "Universal Analytics":
			// Policy flag, not a duplicate check: UA is shut down.
			fp.Issues = append(fp.Issues, "Universal Analytics is deprecated; migrate to GA4")
		}
		analysis.Trackers = append(analysis.Trackers, fp)
	}

	consentFound := false
	for _, sig := range consentSignatures {
		fp := matchProvider(html, sig)
		if fp.Found {
			consentFound = true
			analysis.Consent = append(analysis.Consent, fp)
		}
	}
	if !consentFound {
		for _, pattern := range genericConsentPatterns {
			if pattern.MatchString(html) {
				analysis.Consent = append(analysis.Consent, ProviderFingerprint{
					Provider: "Generic/Custom",
					Found:    true,
				})
				break
			}
		}
	}

	for _, sig := range retargetingSignatures {
		fp := matchProvider(html, sig)
		if fp.Found {
			analysis.Retargeting = append(analysis.Retargeting, fp)
		}
	}

	return analysis
}

// matchProvider evaluates one signature: any single pattern match marks
// the provider found; identifiers are extracted, de-duplicated and
// sorted for deterministic output.
func matchProvider(html string, sig providerSignature) ProviderFingerprint {
	fp := ProviderFingerprint{Provider: sig.Provider}

	for _, pattern := range sig.Patterns {
		if pattern.MatchString(html) {
			fp.Found = true
			break
		}
	}
	if !fp.Found || sig.IDPattern == nil {
		return fp
	}

	seen := make(map[string]bool)
	for _, match := range sig.IDPattern.FindAllStringSubmatch(html, -1) {
		id := match[0]
		if len(match) > 1 && match[1] != "" {
			id = match[1]
		}
		if !seen[id] {
			seen[id] = true
			fp.Identifiers = append(fp.Identifiers, id)
		}
	}
	sort.Strings(fp.Identifiers)
	return fp
}

// duplicateIDIssues implements the over-count rule: a single identifier
// occurring more than twice in raw markup suggests the tag is installed
// multiple times (the canonical loader accounts for exactly two
// occurrences). Exactly two occurrences is normal and silent.
func duplicateIDIssues(html string, idPattern *regexp.Regexp, label string) []string {
	counts := make(map[string]int)
	for _, id := range idPattern.FindAllString(html, -1) {
		counts[id]++
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var issues []string
	for _, id := range ids {
		if counts[id] > 2 {
			issues = append(issues,
				fmt.Sprintf("%s %s appears %d times; it may be installed more than once", label, id, counts[id]))
		}
	}
	return issues
}

func summarizeAnalytics(a *AnalyticsAnalysis) (Status, []string) {
	var details []string
	status := StatusSuccess
	issueCount := 0

	if len(a.Trackers) == 0 {
		details = append(details, "No analytics trackers detected")
	}
	for _, fp := range a.Trackers {
		line := fp.Provider + " detected"
		if len(fp.Identifiers) > 0 {
			line += fmt.Sprintf(" (%s)", joinIdentifiers(fp.Identifiers))
		}
		details = append(details, line)
		for _, issue := range fp.Issues {
			details = append(details, "Issue: "+issue)
			issueCount++
		}
	}

	if len(a.Consent) == 0 {
		status = StatusWarning
		details = append(details, "No cookie consent solution detected")
	}
	for _, fp := range a.Consent {
		details = append(details, "Cookie consent: "+fp.Provider)
	}

	for _, fp := range a.Retargeting {
		details = append(details, "Retargeting pixel: "+fp.Provider)
	}

	if issueCount > 0 {
		status = StatusWarning
	}
	return status, details
}

func joinIdentifiers(ids []string) string {
	const maxShown = 5
	if len(ids) <= maxShown {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:maxShown], ", ") + fmt.Sprintf(", +%d more", len(ids)-maxShown)
}
