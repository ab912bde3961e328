// Package emailparser is the only email-discovery surface in the project.
// Everything else decides where to apply it.
//
// It recognizes literal addresses, mailto: links, text-obfuscated addresses
// (via textnorm.Deobfuscate), addresses hidden in element attributes, and
// addresses assembled by inline JavaScript snippets (see script_email.go).
package emailparser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"coachmail/internal/textnorm"
)

const mailtoScheme = "mailto:"

// reEmail is intentionally permissive; validation beyond this pattern is not
// the extractor's job.
var reEmail = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)

// FindEmails returns every email address discoverable inside sel: mailto:
// link targets (query suffix stripped) and pattern matches over the
// de-obfuscated visible text.
//
// It returns a set with whitespace-trimmed, case-preserved values. It never
// fails; no matches yield an empty set.
func FindEmails(sel *goquery.Selection) map[string]struct{} {
	emails := make(map[string]struct{})

	sel.Find(`a[href^="mailto:"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		addMailto(emails, href)
	})

	text := textnorm.Deobfuscate(JoinedText(sel))
	for _, m := range reEmail.FindAllString(text, -1) {
		add(emails, m)
	}

	return emails
}

// FindEmailsAnywhere is the full-page variant of FindEmails.
//
// On top of the block-local sources it de-obfuscates and scans every
// string-valued attribute of every element (catches emails hidden in data-*,
// title, or alt attributes) and decodes inline-script obfuscation.
func FindEmailsAnywhere(doc *goquery.Document) map[string]struct{} {
	emails := FindEmails(doc.Selection)

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			for _, attr := range n.Attr {
				val := textnorm.Deobfuscate(attr.Val)
				for _, m := range reEmail.FindAllString(val, -1) {
					add(emails, m)
				}
			}
		}
	})

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if e := DecodeScriptEmail(s.Text()); e != "" {
			add(emails, e)
		}
	})

	return emails
}

// JoinedText returns the visible text of sel with text nodes joined by
// single spaces.
//
// goquery's Selection.Text concatenates text nodes without separators, which
// would glue adjacent cells together ("JaneDoejane@x.edu") and corrupt both
// keyword matching and email recognition. Joining with spaces preserves the
// boundaries the markup implies.
func JoinedText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// addMailto extracts the address from a mailto: href, dropping any query
// suffix ("?subject=..."), and adds it if non-empty.
func addMailto(emails map[string]struct{}, href string) {
	rest, ok := strings.CutPrefix(href, mailtoScheme)
	if !ok {
		return
	}
	addr, _, _ := strings.Cut(rest, "?")
	add(emails, addr)
}

func add(emails map[string]struct{}, e string) {
	if e = strings.TrimSpace(e); e != "" {
		emails[e] = struct{}{}
	}
}
