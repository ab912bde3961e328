// Package textnorm canonicalizes page text before any keyword or email
// matching happens.
//
// Every classifier in this project operates on the output of Normalize, so
// the guarantees here are load-bearing: lowercase, single-spaced, trimmed,
// and deterministic for identical input.
package textnorm

import (
	"regexp"
	"strings"
)

// Pre-compiled regexes avoid recompilation on every call.
var (
	reSpaces = regexp.MustCompile(`\s+`)

	// Obfuscation substitutions, applied in order. The " at " / " dot "
	// word forms must come after the bracketed forms: the bracketed forms
	// may carry surrounding whitespace that the word forms would otherwise
	// consume first.
	obfuscations = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`(?i)\s*\[at\]\s*`), "@"},
		{regexp.MustCompile(`(?i)\s*\(at\)\s*`), "@"},
		{regexp.MustCompile(`(?i)\s+at\s+`), "@"},
		{regexp.MustCompile(`(?i)\s*\[dot\]\s*`), "."},
		{regexp.MustCompile(`(?i)\s*\(dot\)\s*`), "."},
		{regexp.MustCompile(`(?i)\s+dot\s+`), "."},
	}
)

// Normalize lowercases s, collapses whitespace runs to single spaces, and
// trims both ends.
func Normalize(s string) string {
	return reSpaces.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// Deobfuscate undoes the common anti-scraping substitutions for "@" and "."
// ("[at]", "(at)", " at ", "[dot]", "(dot)", " dot ", case-insensitive,
// optional surrounding whitespace).
//
// Callers must deobfuscate before email-pattern matching, never after: the
// literal '@' and '.' only exist once the markers are replaced.
func Deobfuscate(s string) string {
	for _, o := range obfuscations {
		s = o.re.ReplaceAllString(s, o.repl)
	}
	return s
}
