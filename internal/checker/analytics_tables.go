package checker

import "regexp"

// providerSignature describes one detectable third-party service: a
// provider is "found" when any one signature pattern matches, and the
// optional ID pattern extracts its account/container identifiers.
// Keeping these as data means new providers are additive table entries.
type providerSignature struct {
	Provider  string
	Patterns  []*regexp.Regexp
	IDPattern *regexp.Regexp
}

// Identifier shapes for the duplicate-tag heuristics.
var (
	ga4IDPattern = regexp.MustCompile(`\bG-[A-Z0-9]{6,12}\b`)
	gtmIDPattern = regexp.MustCompile(`\bGTM-[A-Z0-9]{4,8}\b`)
	uaIDPattern  = regexp.MustCompile(`\bUA-\d{4,10}-\d{1,4}\b`)
)

// trackerSignatures covers the analytics/tracker families. GA4, GTM and
// Universal Analytics additionally run through the duplicate/deprecation
// heuristics in detectAnalytics.
var trackerSignatures = []providerSignature{
	{
		Provider: "Google Analytics 4",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`googletagmanager\.com/gtag/js`),
			regexp.MustCompile(`\bgtag\s*\(`),
			ga4IDPattern,
		},
		IDPattern: ga4IDPattern,
	},
	{
		Provider: "Google Tag Manager",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`googletagmanager\.com/gtm\.js`),
			regexp.MustCompile(`googletagmanager\.com/ns\.html`),
			gtmIDPattern,
		},
		IDPattern: gtmIDPattern,
	},
	{
		Provider:  "Universal Analytics",
		Patterns:  []*regexp.Regexp{uaIDPattern},
		IDPattern: uaIDPattern,
	},
	{
		Provider: "Matomo",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`matomo\.js`),
			regexp.MustCompile(`_paq\.push\s*\(`),
		},
		IDPattern: regexp.MustCompile(`setSiteId['"]?\s*,\s*['"]?(\d+)`),
	},
	{
		Provider: "Plausible",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`plausible\.io/js`),
			regexp.MustCompile(`data-domain=`),
		},
	},
	{
		Provider: "Fathom",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`cdn\.usefathom\.com`),
			regexp.MustCompile(`fathom\.js`),
		},
		IDPattern: regexp.MustCompile(`data-site=["']([A-Z]{8})["']`),
	},
	{
		Provider: "Hotjar",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`static\.hotjar\.com`),
			regexp.MustCompile(`\bhjid\s*:`),
		},
		IDPattern: regexp.MustCompile(`hjid\s*:\s*(\d{6,8})`),
	},
	{
		Provider: "Microsoft Clarity",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`clarity\.ms/tag`),
			regexp.MustCompile(`\bclarity\s*\(`),
		},
		IDPattern: regexp.MustCompile(`clarity\.ms/tag/([a-z0-9]+)`),
	},
	{
		Provider: "Facebook Pixel",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`connect\.facebook\.net/[^"']*fbevents\.js`),
			regexp.MustCompile(`\bfbq\s*\(`),
		},
		IDPattern: regexp.MustCompile(`fbq\s*\(\s*['"]init['"]\s*,\s*['"](\d{15,16})['"]`),
	},
	{
		Provider: "Segment",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`cdn\.segment\.com/analytics\.js`),
			regexp.MustCompile(`analytics\.load\s*\(`),
		},
	},
	{
		Provider: "HubSpot",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`js\.hs-scripts\.com/(\d+)\.js`),
			regexp.MustCompile(`js\.hs-analytics\.net`),
		},
		IDPattern: regexp.MustCompile(`js\.hs-scripts\.com/(\d+)\.js`),
	},
	{
		Provider: "Mixpanel",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`cdn\.mxpnl\.com`),
			regexp.MustCompile(`mixpanel\.init\s*\(`),
		},
	},
}

// consentSignatures covers cookie-consent management providers. If no
// specific provider matches, genericConsentPatterns is tried and a
// synthetic "Generic/Custom" provider is reported on any match.
var consentSignatures = []providerSignature{
	{
		Provider:  "Cookiebot",
		Patterns:  []*regexp.Regexp{regexp.MustCompile(`consent\.cookiebot\.com`), regexp.MustCompile(`\bCookiebot\b`)},
		IDPattern: regexp.MustCompile(`data-cbid=["']([0-9a-f-]{36})["']`),
	},
	{
		Provider:  "OneTrust",
		Patterns:  []*regexp.Regexp{regexp.MustCompile(`cdn\.cookielaw\.org`), regexp.MustCompile(`\bOptanon`)},
		IDPattern: regexp.MustCompile(`data-domain-script=["']([0-9a-f-]+)["']`),
	},
	{
		Provider:  "Usercentrics",
		Patterns:  []*regexp.Regexp{regexp.MustCompile(`app\.usercentrics\.eu`), regexp.MustCompile(`usercentrics-cmp`)},
		IDPattern: regexp.MustCompile(`data-settings-id=["']([A-Za-z0-9_-]+)["']`),
	},
	{
		Provider: "Termly",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`app\.termly\.io`)},
	},
	{
		Provider:  "iubenda",
		Patterns:  []*regexp.Regexp{regexp.MustCompile(`cdn\.iubenda\.com`), regexp.MustCompile(`_iub\.csConfiguration`)},
		IDPattern: regexp.MustCompile(`siteId['"]?\s*:\s*(\d+)`),
	},
	{
		Provider: "Quantcast Choice",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`quantcast\.mgr\.consensu\.org`), regexp.MustCompile(`cmp\.quantcast\.com`)},
	},
	{
		Provider: "TrustArc",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`consent\.trustarc\.com`), regexp.MustCompile(`\btruste\b`)},
	},
	{
		Provider: "Osano",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`cmp\.osano\.com`)},
	},
	{
		Provider: "CookieYes",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`cdn-cookieyes\.com`), regexp.MustCompile(`\bcookieyes\b`)},
	},
	{
		Provider: "Complianz",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`complianz-gdpr`), regexp.MustCompile(`\bcmplz_`)},
	},
	{
		Provider: "Borlabs Cookie",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`borlabs-cookie`), regexp.MustCompile(`\bBorlabsCookie\b`)},
	},
	{
		Provider: "Didomi",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`sdk\.privacy-center\.org`), regexp.MustCompile(`\bdidomi\b`)},
	},
	{
		Provider: "Klaro",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`klaro\.js`), regexp.MustCompile(`\bklaroConfig\b`)},
	},
	{
		Provider: "Moove GDPR",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`moove_gdpr`), regexp.MustCompile(`gdpr-cookie-compliance`)},
	},
	{
		Provider: "CookieFirst",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`consent\.cookiefirst\.com`)},
	},
}

// genericConsentPatterns is the secondary table of consent-banner
// phrasing tried when no specific provider matched.
var genericConsentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)we use cookies`),
	regexp.MustCompile(`(?i)this (web)?site uses cookies`),
	regexp.MustCompile(`(?i)accept all cookies`),
	regexp.MustCompile(`(?i)cookie consent`),
	regexp.MustCompile(`(?i)cookie settings`),
	regexp.MustCompile(`(?i)manage (your )?cookie preferences`),
}

// retargetingSignatures covers advertising/retargeting pixels.
var retargetingSignatures = []providerSignature{
	{
		Provider: "Google Ads",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`googleads\.g\.doubleclick\.net`),
			regexp.MustCompile(`\bAW-\d{9,11}\b`),
		},
		IDPattern: regexp.MustCompile(`\bAW-\d{9,11}\b`),
	},
	{
		Provider: "Microsoft Ads",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`bat\.bing\.com/bat\.js`)},
	},
	{
		Provider: "LinkedIn Insight",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`snap\.licdn\.com`),
			regexp.MustCompile(`_linkedin_partner_id`),
		},
		IDPattern: regexp.MustCompile(`_linkedin_partner_id\s*=\s*["'](\d+)["']`),
	},
	{
		Provider: "Twitter Pixel",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`static\.ads-twitter\.com`),
			regexp.MustCompile(`\btwq\s*\(`),
		},
	},
	{
		Provider: "Pinterest Tag",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`s\.pinimg\.com/ct/core\.js`),
			regexp.MustCompile(`\bpintrk\s*\(`),
		},
	},
}
