package checker

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CopyrightInfo is the extracted copyright notice.
type CopyrightInfo struct {
	Found       bool     `json:"found"`
	Year        int      `json:"year,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
	Text        string   `json:"text,omitempty"`
	Issues      []string `json:"issues,omitempty"`
}

// FontsInfo records detected web font usage.
type FontsInfo struct {
	Found   bool     `json:"found"`
	Sources []string `json:"sources,omitempty"`
}

// SocialLink is one anchor resolving to a known social platform.
// Missing target/noopener attributes are advisory issues only; they
// never flip the overall result.
type SocialLink struct {
	Platform string   `json:"platform"`
	URL      string   `json:"url"`
	NewTab   bool     `json:"new_tab"`
	Noopener bool     `json:"noopener"`
	Issues   []string `json:"issues,omitempty"`
}

// ContentAnalysis is the content checker's analysis payload.
type ContentAnalysis struct {
	Copyright   CopyrightInfo `json:"copyright"`
	Fonts       FontsInfo     `json:"fonts"`
	SocialLinks []SocialLink  `json:"social_links"`
}

// copyrightPatterns covers both field orders: symbol-year-company and
// symbol-company-year. Which capture group holds the 4-digit year is
// fixed per pattern shape, not inferred from position at match time.
var copyrightPatterns = []struct {
	re           *regexp.Regexp
	yearGroup    int
	companyGroup int
}{
	// symbol-year-company
	{regexp.MustCompile(`©\s*(\d{4})\s+([^\n|•©]{2,80})`), 1, 2},
	{regexp.MustCompile(`(?i)\(c\)\s*(\d{4})\s+([^\n|•©]{2,80})`), 1, 2},
	{regexp.MustCompile(`(?i)copyright\s*(?:©|\(c\))?\s*(\d{4})\s+([^\n|•©]{2,80})`), 1, 2},
	// symbol-company-year
	{regexp.MustCompile(`©\s*([^\n|•©\d]{2,80}?)[,\s]+(\d{4})`), 2, 1},
	{regexp.MustCompile(`(?i)\(c\)\s*([^\n|•©\d]{2,80}?)[,\s]+(\d{4})`), 2, 1},
	{regexp.MustCompile(`(?i)copyright\s*(?:©|\(c\))?\s*([^\n|•©\d]{2,80}?)[,\s]+(\d{4})`), 2, 1},
}

var (
	rightsReservedSuffix = regexp.MustCompile(`(?i)[.,;:\s]*all rights reserved.*$`)
	trailingPunctuation  = regexp.MustCompile(`[.,;:\s\-]+$`)
)

// fontCDNSignatures maps link/script URL fragments to font sources.
var fontCDNSignatures = []struct {
	Pattern string
	Source  string
}{
	{"fonts.googleapis.com", "Google Fonts"},
	{"fonts.gstatic.com", "Google Fonts"},
	{"use.typekit.net", "Adobe Fonts"},
	{"use.fontawesome.com", "Font Awesome"},
	{"fonts.bunny.net", "Bunny Fonts"},
	{"cloud.typography.com", "Hoefler&Co Cloud.typography"},
	{"fast.fonts.net", "Monotype"},
	{"f.fontdeck.com", "Fontdeck"},
}

// socialDomains is the fixed platform table; anchors match by exact
// hostname or subdomain.
var socialDomains = map[string]string{
	"facebook.com":    "Facebook",
	"instagram.com":   "Instagram",
	"twitter.com":     "Twitter/X",
	"x.com":           "Twitter/X",
	"linkedin.com":    "LinkedIn",
	"youtube.com":     "YouTube",
	"tiktok.com":      "TikTok",
	"pinterest.com":   "Pinterest",
	"snapchat.com":    "Snapchat",
	"threads.net":     "Threads",
	"bsky.app":        "Bluesky",
	"mastodon.social": "Mastodon",
	"github.com":      "GitHub",
	"medium.com":      "Medium",
	"vimeo.com":       "Vimeo",
	"t.me":            "Telegram",
	"discord.gg":      "Discord",
}

// ContentChecker runs the content-compliance heuristics over the
// homepage: copyright notice, web fonts, social links.
type ContentChecker struct {
	Client *Client

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

func (c *ContentChecker) ID() string    { return CheckContent }
func (c *ContentChecker) Label() string { return "Content Compliance" }

func (c *ContentChecker) Check(ctx context.Context, target Target) CheckResult {
	res, err := c.Client.Fetch(ctx, target.URL("https", false))
	if err != nil {
		res, err = c.Client.Fetch(ctx, target.URL("http", false))
	}
	if err != nil {
		return ErrorResult(CheckContent, fmt.Errorf("fetch page: %w", err))
	}
	if !res.OK() {
		return ErrorResult(CheckContent, fmt.Errorf("page returned status %d", res.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		return ErrorResult(CheckContent, fmt.Errorf("parse document: %w", err))
	}

	nowFn := c.now
	if nowFn == nil {
		nowFn = time.Now
	}

	analysis := &ContentAnalysis{
		Copyright:   extractCopyrightFromDoc(doc, nowFn().Year()),
		Fonts:       DetectFonts(doc, res.Body),
		SocialLinks: DetectSocialLinks(doc),
	}

	result := CheckResult{
		CheckID:   CheckContent,
		Analysis:  analysis,
		CheckedAt: time.Now().UTC(),
	}
	result.Status, result.Details = summarizeContent(analysis)
	return result
}

// extractCopyrightFromDoc searches footer-like elements first, then the
// whole document.
func extractCopyrightFromDoc(doc *goquery.Document, currentYear int) CopyrightInfo {
	footerText := doc.Find("footer, .footer, #footer, [class*='copyright']").Text()
	if info := ExtractCopyright(footerText, currentYear); info.Found {
		return info
	}
	return ExtractCopyright(doc.Text(), currentYear)
}

// ExtractCopyright matches the text against the six pattern variants
// and classifies the extracted year against currentYear.
func ExtractCopyright(text string, currentYear int) CopyrightInfo {
	for _, p := range copyrightPatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		year, err := strconv.Atoi(match[p.yearGroup])
		if err != nil {
			continue
		}

		info := CopyrightInfo{
			Found:       true,
			Year:        year,
			CompanyName: cleanCompanyName(match[p.companyGroup]),
			Text:        strings.TrimSpace(match[0]),
		}
		if year < currentYear {
			info.Issues = append(info.Issues,
				fmt.Sprintf("Copyright year %d is outdated (current year is %d)", year, currentYear))
		} else if year > currentYear {
			info.Issues = append(info.Issues,
				fmt.Sprintf("Copyright year %d is in the future", year))
		}
		return info
	}
	return CopyrightInfo{}
}

// cleanCompanyName strips trailing "all rights reserved" boilerplate
// and trailing punctuation.
func cleanCompanyName(name string) string {
	name = strings.TrimSpace(name)
	name = rightsReservedSuffix.ReplaceAllString(name, "")
	name = trailingPunctuation.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// DetectFonts detects web font usage: known font-CDN references first,
// then @font-face declarations in inline style blocks, then a generic
// font-family textual presence as a last-resort signal.
func DetectFonts(doc *goquery.Document, rawHTML string) FontsInfo {
	info := FontsInfo{}
	seen := make(map[string]bool)
	add := func(source string) {
		if !seen[source] {
			seen[source] = true
			info.Sources = append(info.Sources, source)
			info.Found = true
		}
	}

	for _, sig := range fontCDNSignatures {
		if strings.Contains(rawHTML, sig.Pattern) {
			add(sig.Source)
		}
	}

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if strings.Contains(s.Text(), "@font-face") {
			add("Custom @font-face")
		}
	})

	if !info.Found && strings.Contains(rawHTML, "font-family") {
		add("Generic font-family usage")
	}

	return info
}

// DetectSocialLinks collects anchors whose resolved hostname matches
// the platform table, recording new-tab and noopener hygiene as
// advisory issues.
func DetectSocialLinks(doc *goquery.Document) []SocialLink {
	links := []SocialLink{}
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		platform := matchSocialPlatform(href)
		if platform == "" || seen[href] {
			return
		}
		seen[href] = true

		link := SocialLink{Platform: platform, URL: href}

		if target, ok := s.Attr("target"); ok && target == "_blank" {
			link.NewTab = true
		}
		rel, _ := s.Attr("rel")
		relLower := strings.ToLower(rel)
		link.Noopener = strings.Contains(relLower, "noopener") || strings.Contains(relLower, "noreferrer")

		if !link.NewTab {
			link.Issues = append(link.Issues, `Consider target="_blank" so visitors keep your site open`)
		}
		if !link.Noopener {
			link.Issues = append(link.Issues, `Missing rel="noopener" (reverse tabnabbing hygiene)`)
		}

		links = append(links, link)
	})

	return links
}

func matchSocialPlatform(href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	if platform, ok := socialDomains[host]; ok {
		return platform
	}
	for domain, platform := range socialDomains {
		if strings.HasSuffix(host, "."+domain) {
			return platform
		}
	}
	return ""
}

func summarizeContent(a *ContentAnalysis) (Status, []string) {
	var details []string
	status := StatusSuccess

	if a.Copyright.Found {
		details = append(details, fmt.Sprintf("Copyright: %d %s", a.Copyright.Year, a.Copyright.CompanyName))
		for _, issue := range a.Copyright.Issues {
			status = StatusWarning
			details = append(details, "Issue: "+issue)
		}
	} else {
		status = StatusWarning
		details = append(details, "No copyright notice found")
	}

	if a.Fonts.Found {
		details = append(details, "Web fonts: "+strings.Join(a.Fonts.Sources, ", "))
	} else {
		details = append(details, "No web font usage detected")
	}

	if len(a.SocialLinks) > 0 {
		details = append(details, fmt.Sprintf("%d social link(s) found", len(a.SocialLinks)))
		for _, link := range a.SocialLinks {
			details = append(details, fmt.Sprintf("%s: %s", link.Platform, link.URL))
			// Advisory only: hygiene issues never flip the result.
			for _, issue := range link.Issues {
				details = append(details, "Advisory: "+issue)
			}
		}
	} else {
		status = StatusWarning
		details = append(details, "No social links found")
	}

	return status, details
}
