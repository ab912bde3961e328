package segment

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"coachmail/internal/classify"
	"coachmail/internal/sportmatch"
)

// bioPathMarkers identify URL paths that plausibly lead to an individual
// staff member's page. Ordered configuration data.
var bioPathMarkers = []string{
	"/staff",
	"/coaches",
	"/coach",
	"/people",
	"/person",
	"/bio",
	"/roster",
}

// BioLinks collects, from every block passing the role classifier (and the
// sport matcher when requireSport is set), the same-domain links that look
// like individual staff bio pages.
//
// mailto: and tel: links are skipped, relative hrefs are resolved against
// baseURL, cross-domain links are discarded, and only paths containing one
// of bioPathMarkers survive. The result is deduplicated and sorted so
// callers can cap fan-out deterministically.
func BioLinks(doc *goquery.Document, baseURL, sport string, requireSport bool) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})

	for _, b := range Segment(doc) {
		if !classify.IsTargetRole(b.Text) {
			continue
		}
		if requireSport && !sportmatch.Match(b.Text, sport) {
			continue
		}

		b.Sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
				return
			}

			u, err := url.Parse(href)
			if err != nil {
				return
			}
			abs := base.ResolveReference(u)

			if !strings.EqualFold(abs.Host, base.Host) {
				return
			}

			path := strings.ToLower(abs.Path)
			for _, marker := range bioPathMarkers {
				if strings.Contains(path, marker) {
					seen[abs.String()] = struct{}{}
					break
				}
			}
		})
	}

	links := make([]string, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	sort.Strings(links)
	return links
}
