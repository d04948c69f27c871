package checker

import (
	"fmt"
	"net/http"
)

// Header tiers. HSTS is the one essential header; the other three are
// recommended hardening.
const (
	HeaderTierEssential   = "Essential"
	HeaderTierRecommended = "Recommended"
)

// SecurityHeader is one evaluated response header.
type SecurityHeader struct {
	Name    string `json:"name"`
	Tier    string `json:"tier"`
	Present bool   `json:"present"`
	Value   string `json:"value,omitempty"`
}

// HeaderAnalysis holds the fixed four-header evaluation.
type HeaderAnalysis struct {
	Headers    []SecurityHeader `json:"headers"`
	FoundCount int              `json:"found_count"`
}

// securityHeaderSpecs is the fixed evaluation set; exactly these four
// headers are checked, in this order.
var securityHeaderSpecs = []struct {
	Name string
	Tier string
}{
	{"Strict-Transport-Security", HeaderTierEssential},
	{"Content-Security-Policy", HeaderTierRecommended},
	{"X-Frame-Options", HeaderTierRecommended},
	{"X-Content-Type-Options", HeaderTierRecommended},
}

// AnalyzeSecurityHeaders evaluates the four-header set against a
// response. Severity is binary on "any vs none": a single present
// header still reads as success with itemized gaps.
func AnalyzeSecurityHeaders(h http.Header) *HeaderAnalysis {
	analysis := &HeaderAnalysis{Headers: make([]SecurityHeader, 0, len(securityHeaderSpecs))}

	for _, spec := range securityHeaderSpecs {
		value := h.Get(spec.Name)
		header := SecurityHeader{
			Name:    spec.Name,
			Tier:    spec.Tier,
			Present: value != "",
			Value:   value,
		}
		if header.Present {
			analysis.FoundCount++
		}
		analysis.Headers = append(analysis.Headers, header)
	}

	return analysis
}

// headerDetails renders the per-header report lines.
func headerDetails(a *HeaderAnalysis) []string {
	details := []string{fmt.Sprintf("Security headers present: %d of %d", a.FoundCount, len(a.Headers))}
	for _, h := range a.Headers {
		if h.Present {
			details = append(details, fmt.Sprintf("%s (%s): present", h.Name, h.Tier))
		} else {
			details = append(details, fmt.Sprintf("%s (%s): missing", h.Name, h.Tier))
		}
	}
	return details
}
