// Package sportmatch derives matchable tokens from free-form sport names and
// tests block text against them.
//
// Sport strings arrive in every shape imaginable ("Women's Basketball",
// "WBB", "swim & dive"), and staff directories abbreviate differently again
// (mbkb, wsoc). The token set deliberately over-generates; the only hard
// precision rule is the diving-only exclusion for swim targets.
package sportmatch

import (
	"regexp"
	"strings"
)

var (
	reNonToken = regexp.MustCompile(`[^a-z0-9\s']`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// Tokens returns the set of lowercase tokens considered equivalent mentions
// of sport.
//
// Derivation: the cleaned phrase itself, its apostrophe-stripped variant, and
// every individual word of length >= 4 (shorter words like "and" over-match).
// Sport-specific shorthand is layered on top for basketball, soccer, and
// swimming, gender-prefixed where the source string carries "men"/"women".
func Tokens(sport string) map[string]struct{} {
	clean := reSpaces.ReplaceAllString(reNonToken.ReplaceAllString(strings.ToLower(strings.TrimSpace(sport)), " "), " ")
	clean = strings.TrimSpace(clean)

	tokens := make(map[string]struct{})
	add := func(t string) {
		if t != "" {
			tokens[t] = struct{}{}
		}
	}

	add(clean)
	add(strings.ReplaceAll(clean, "'", ""))

	for _, w := range strings.Fields(clean) {
		if len(w) >= 4 {
			add(w)
		}
	}

	if strings.Contains(clean, "swim") {
		add("swimming")
		add("swim")
		add("swimming and diving")
		add("swimming & diving")
		add("swim and dive")
		add("swim & dive")
		add("swimdive")
	}

	if strings.Contains(clean, "basketball") {
		add("basketball")
		if strings.Contains(clean, "men") {
			add("mbkb")
			add("m basketball")
			add("mens basketball")
		}
		if strings.Contains(clean, "women") {
			add("wbkb")
			add("w basketball")
			add("womens basketball")
		}
	}

	if strings.Contains(clean, "soccer") {
		add("soccer")
		if strings.Contains(clean, "men") {
			add("msoc")
			add("mens soccer")
		}
		if strings.Contains(clean, "women") {
			add("wsoc")
			add("womens soccer")
		}
	}

	return tokens
}

// divingOnly reports whether text names a diving-only specialist under a
// swimming target: it mentions diving in some form but never swimming.
//
// Swimmers and divers share rosters but not coaching staffs, so a diving
// coach is not a valid contact for a swim target.
func divingOnly(text, sport string) bool {
	s := strings.ToLower(strings.TrimSpace(sport))
	if !strings.Contains(s, "swim") {
		return false
	}

	padded := " " + text + " "
	hasDiving := strings.Contains(text, "diving") ||
		strings.Contains(padded, " dive ") ||
		strings.Contains(text, "diver")
	hasSwim := strings.Contains(text, "swimming") ||
		strings.Contains(padded, " swim ") ||
		strings.Contains(text, "swim&dive") ||
		strings.Contains(text, "swim and dive")

	return hasDiving && !hasSwim
}

// Match reports whether normalized block text mentions sport.
//
// An empty token set means no constraint (matches everything). The
// diving-only exclusion is checked first and rejects unconditionally.
func Match(text, sport string) bool {
	if divingOnly(text, sport) {
		return false
	}

	tokens := Tokens(sport)
	if len(tokens) == 0 {
		return true
	}
	for tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
