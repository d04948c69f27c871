package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Length buckets for title and description.
const (
	LengthTooShort = "too-short"
	LengthOptimal  = "optimal"
	LengthTooLong  = "too-long"

	titleMinLength       = 30
	titleMaxLength       = 60
	descriptionMinLength = 120
	descriptionMaxLength = 160
)

// MetaProperty is one raw og:*/twitter:* property.
type MetaProperty struct {
	Property string `json:"property"`
	Content  string `json:"content"`
}

// HreflangAlternate is one rel=alternate hreflang link.
type HreflangAlternate struct {
	Lang string `json:"lang"`
	Href string `json:"href"`
}

// OpenGraphMeta is the typed subset of og:* properties.
type OpenGraphMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url,omitempty"`
	Type        string `json:"type,omitempty"`
}

// TwitterMeta is the typed subset of twitter:* properties.
type TwitterMeta struct {
	Card        string `json:"card,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// MetaAnalysis is the meta checker's analysis payload.
type MetaAnalysis struct {
	Title             string              `json:"title"`
	TitleLength       int                 `json:"title_length"`
	TitleBucket       string              `json:"title_bucket"`
	Description       string              `json:"description"`
	DescriptionLength int                 `json:"description_length"`
	DescriptionBucket string              `json:"description_bucket"`
	Viewport          string              `json:"viewport,omitempty"`
	Responsive        bool                `json:"responsive"`
	Charset           string              `json:"charset,omitempty"`
	Canonical         string              `json:"canonical,omitempty"`
	RobotsMeta        string              `json:"robots_meta,omitempty"`
	NoIndex           bool                `json:"noindex"`
	NoFollow          bool                `json:"nofollow"`
	OpenGraph         OpenGraphMeta       `json:"open_graph"`
	Twitter           TwitterMeta         `json:"twitter"`
	RawProperties     []MetaProperty      `json:"raw_properties,omitempty"`
	Hreflang          []HreflangAlternate `json:"hreflang,omitempty"`
	StructuredData    []json.RawMessage   `json:"structured_data,omitempty"`
}

// MetaChecker extracts on-page SEO metadata from the homepage.
type MetaChecker struct {
	Client *Client
}

func (m *MetaChecker) ID() string    { return CheckMeta }
func (m *MetaChecker) Label() string { return "Meta & SEO Tags" }

func (m *MetaChecker) Check(ctx context.Context, target Target) CheckResult {
	res, err := m.Client.Fetch(ctx, target.URL("https", false))
	if err != nil {
		res, err = m.Client.Fetch(ctx, target.URL("http", false))
	}
	if err != nil {
		return ErrorResult(CheckMeta, fmt.Errorf("fetch page: %w", err))
	}
	if !res.OK() {
		return ErrorResult(CheckMeta, fmt.Errorf("page returned status %d", res.StatusCode))
	}

	analysis, err := ExtractMeta(res.Body)
	if err != nil {
		return ErrorResult(CheckMeta, err)
	}

	result := CheckResult{
		CheckID:   CheckMeta,
		Analysis:  analysis,
		CheckedAt: time.Now().UTC(),
	}
	result.Status, result.Details = summarizeMeta(analysis)
	return result
}

// ExtractMeta parses the markup into a document tree and extracts the
// SEO facts. Pure function over the markup.
func ExtractMeta(html string) (*MetaAnalysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	analysis := &MetaAnalysis{}

	analysis.Title = strings.TrimSpace(doc.Find("title").First().Text())
	analysis.TitleLength = len([]rune(analysis.Title))
	analysis.TitleBucket = bucketLength(analysis.TitleLength, titleMinLength, titleMaxLength)

	analysis.Description, _ = doc.Find("meta[name='description']").Attr("content")
	analysis.Description = strings.TrimSpace(analysis.Description)
	analysis.DescriptionLength = len([]rune(analysis.Description))
	analysis.DescriptionBucket = bucketLength(analysis.DescriptionLength, descriptionMinLength, descriptionMaxLength)

	analysis.Viewport, _ = doc.Find("meta[name='viewport']").Attr("content")
	analysis.Responsive = strings.Contains(analysis.Viewport, "width=device-width")

	analysis.Charset, _ = doc.Find("meta[charset]").Attr("charset")
	if analysis.Charset == "" {
		// Legacy form: <meta http-equiv="Content-Type" content="text/html; charset=...">
		if content, ok := doc.Find("meta[http-equiv='Content-Type']").Attr("content"); ok {
			if _, cs, found := strings.Cut(strings.ToLower(content), "charset="); found {
				analysis.Charset = strings.TrimSpace(cs)
			}
		}
	}

	analysis.Canonical, _ = doc.Find("link[rel='canonical']").Attr("href")

	analysis.RobotsMeta, _ = doc.Find("meta[name='robots']").Attr("content")
	robotsLower := strings.ToLower(analysis.RobotsMeta)
	analysis.NoIndex = strings.Contains(robotsLower, "noindex")
	analysis.NoFollow = strings.Contains(robotsLower, "nofollow")

	doc.Find("meta[property], meta[name]").Each(func(_ int, s *goquery.Selection) {
		prop, ok := s.Attr("property")
		if !ok {
			prop, _ = s.Attr("name")
		}
		if !strings.HasPrefix(prop, "og:") && !strings.HasPrefix(prop, "twitter:") {
			return
		}
		content, _ := s.Attr("content")
		analysis.RawProperties = append(analysis.RawProperties, MetaProperty{Property: prop, Content: content})

		switch prop {
		case "og:title":
			analysis.OpenGraph.Title = content
		case "og:description":
			analysis.OpenGraph.Description = content
		case "og:image":
			analysis.OpenGraph.Image = content
		case "og:url":
			analysis.OpenGraph.URL = content
		case "og:type":
			analysis.OpenGraph.Type = content
		case "twitter:card":
			analysis.Twitter.Card = content
		case "twitter:title":
			analysis.Twitter.Title = content
		case "twitter:description":
			analysis.Twitter.Description = content
		case "twitter:image":
			analysis.Twitter.Image = content
		}
	})

	doc.Find("link[rel='alternate'][hreflang]").Each(func(_ int, s *goquery.Selection) {
		lang, _ := s.Attr("hreflang")
		href, _ := s.Attr("href")
		analysis.Hreflang = append(analysis.Hreflang, HreflangAlternate{Lang: lang, Href: href})
	})

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		// An unparseable block is skipped silently; it degrades
		// richness, not the check.
		if json.Valid([]byte(raw)) {
			analysis.StructuredData = append(analysis.StructuredData, json.RawMessage(raw))
		}
	})

	return analysis, nil
}

func bucketLength(length, minLen, maxLen int) string {
	switch {
	case length < minLen:
		return LengthTooShort
	case length > maxLen:
		return LengthTooLong
	default:
		return LengthOptimal
	}
}

func summarizeMeta(a *MetaAnalysis) (Status, []string) {
	var details []string
	status := StatusSuccess
	warn := func(line string) {
		status = StatusWarning
		details = append(details, line)
	}

	if a.Title == "" {
		warn("Missing <title> tag")
	} else {
		switch a.TitleBucket {
		case LengthOptimal:
			details = append(details, fmt.Sprintf("Title length %d is optimal", a.TitleLength))
		case LengthTooShort:
			warn(fmt.Sprintf("Title is too short (%d chars, aim for %d-%d)", a.TitleLength, titleMinLength, titleMaxLength))
		case LengthTooLong:
			warn(fmt.Sprintf("Title is too long (%d chars, aim for %d-%d)", a.TitleLength, titleMinLength, titleMaxLength))
		}
	}

	if a.Description == "" {
		warn("Missing meta description")
	} else {
		switch a.DescriptionBucket {
		case LengthOptimal:
			details = append(details, fmt.Sprintf("Description length %d is optimal", a.DescriptionLength))
		case LengthTooShort:
			warn(fmt.Sprintf("Description is too short (%d chars, aim for %d-%d)", a.DescriptionLength, descriptionMinLength, descriptionMaxLength))
		case LengthTooLong:
			warn(fmt.Sprintf("Description is too long (%d chars, aim for %d-%d)", a.DescriptionLength, descriptionMinLength, descriptionMaxLength))
		}
	}

	if a.Responsive {
		details = append(details, "Viewport is responsive (width=device-width)")
	} else {
		warn("Viewport meta tag missing or not responsive")
	}

	if a.Charset != "" {
		details = append(details, "Charset: "+a.Charset)
	} else {
		warn("No charset declared")
	}

	if a.Canonical != "" {
		details = append(details, "Canonical: "+a.Canonical)
	} else {
		warn("No canonical link")
	}

	if a.NoIndex {
		warn("Robots meta contains noindex; the page is excluded from search")
	}
	if a.NoFollow {
		warn("Robots meta contains nofollow")
	}

	ogCount := 0
	twitterCount := 0
	for _, p := range a.RawProperties {
		if strings.HasPrefix(p.Property, "og:") {
			ogCount++
		} else {
			twitterCount++
		}
	}
	if ogCount > 0 {
		details = append(details, fmt.Sprintf("%d Open Graph propert(ies)", ogCount))
	} else {
		warn("No Open Graph tags")
	}
	if twitterCount > 0 {
		details = append(details, fmt.Sprintf("%d Twitter Card propert(ies)", twitterCount))
	}

	if len(a.Hreflang) > 0 {
		details = append(details, fmt.Sprintf("%d hreflang alternate(s)", len(a.Hreflang)))
	}
	if len(a.StructuredData) > 0 {
		details = append(details, fmt.Sprintf("%d structured data block(s)", len(a.StructuredData)))
	}

	return status, details
}
