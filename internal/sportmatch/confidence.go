package sportmatch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// confidenceKeywords hold the "strong signal" phrases per canonical sport.
// All upper-case because PageConfidence normalizes page text to upper.
var confidenceKeywords = map[string][]string{
	"Men's Basketball": {
		"MBB", "MEN'S BASKETBALL", "MENS BASKETBALL", "MEN BASKETBALL",
		"BASKETBALL (M)", "BASKETBALL - MEN", "MEN'S BB", "M BASKETBALL",
	},
	"Women's Basketball": {
		"WBB", "WOMEN'S BASKETBALL", "WOMENS BASKETBALL", "WOMEN BASKETBALL",
		"BASKETBALL (W)", "BASKETBALL - WOMEN", "WOMEN'S BB", "W BASKETBALL",
	},
	"Men's Tennis": {
		"MTEN", "MEN'S TENNIS", "MENS TENNIS", "MEN TENNIS",
		"TENNIS (M)", "TENNIS - MEN", "M TENNIS",
	},
	"Women's Tennis": {
		"WTEN", "WOMEN'S TENNIS", "WOMENS TENNIS", "WOMEN TENNIS",
		"TENNIS (W)", "TENNIS - WOMEN", "W TENNIS",
	},
	"Men's Swimming & Diving": {
		"MSWIM", "MEN'S SWIMMING", "MENS SWIMMING", "MEN SWIMMING",
		"MEN'S SWIMMING AND DIVING", "MEN'S SWIMMING & DIVING",
		"SWIMMING AND DIVING (M)", "SWIM", "SWIMMING", "SWIM & DIVE",
		"SWIMMING & DIVING", "S&D", "S AND D",
	},
	"Women's Swimming & Diving": {
		"WSWIM", "WOMEN'S SWIMMING", "WOMENS SWIMMING", "WOMEN SWIMMING",
		"WOMEN'S SWIMMING AND DIVING", "WOMEN'S SWIMMING & DIVING",
		"SWIMMING AND DIVING (W)", "SWIM", "SWIMMING", "SWIM & DIVE",
		"SWIMMING & DIVING", "S&D", "S AND D",
	},
}

// PageConfidence scores how strongly a page's high-signal text (title,
// headings, nav/breadcrumb regions) mentions the given canonical sport.
//
// It returns the score and the keywords that matched. Only strong signals
// are considered to avoid false positives from body copy; a score >= 1 means
// the page is plausibly about the sport. The score is advisory: callers log
// it, they do not gate extraction on it.
func PageConfidence(doc *goquery.Document, canonicalSport string) (int, []string) {
	var parts []string

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if txt := strings.TrimSpace(s.Text()); txt != "" {
			parts = append(parts, txt)
		}
	})

	doc.Find("nav, .breadcrumb, .breadcrumbs, .site-nav, header").Each(func(_ int, s *goquery.Selection) {
		if txt := strings.TrimSpace(s.Text()); txt != "" {
			parts = append(parts, txt)
		}
	})

	strong := canonNormalize(strings.Join(parts, " "))

	keywords := confidenceKeywords[canonicalSport]
	if len(keywords) == 0 {
		// Unknown sports degrade to matching their own normalized name.
		keywords = []string{canonNormalize(canonicalSport)}
	}

	// canonNormalize rewrites "&" to " AND ", so keyword forms containing a
	// literal "&" are normalized the same way before comparison.
	var matched []string
	for _, k := range keywords {
		if strings.Contains(strong, canonNormalize(k)) {
			matched = append(matched, k)
		}
	}

	score := len(matched)
	if strings.Contains(strong, "MEN") && strings.HasPrefix(canonicalSport, "Men") {
		score++
	}
	if strings.Contains(strong, "WOMEN") && strings.HasPrefix(canonicalSport, "Women") {
		score++
	}

	return score, matched
}
