package sportmatch

import (
	"regexp"
	"strings"
)

// Canonical display names by (gender, category).
var canonicalSports = map[[2]string]string{
	{"M", "BASKETBALL"}:      "Men's Basketball",
	{"W", "BASKETBALL"}:      "Women's Basketball",
	{"M", "TENNIS"}:          "Men's Tennis",
	{"W", "TENNIS"}:          "Women's Tennis",
	{"M", "SWIMMING_DIVING"}: "Men's Swimming & Diving",
	{"W", "SWIMMING_DIVING"}: "Women's Swimming & Diving",
}

// sportAliases map a gender-stripped, upper-normalized sport phrase to its
// category key.
var sportAliases = map[string]string{
	"BASKETBALL":          "BASKETBALL",
	"BBALL":               "BASKETBALL",
	"TENNIS":              "TENNIS",
	"TENN":                "TENNIS",
	"SWIM":                "SWIMMING_DIVING",
	"SWIMMING":            "SWIMMING_DIVING",
	"SWIMMING AND DIVING": "SWIMMING_DIVING",
	"SWIMMING DIVING":     "SWIMMING_DIVING",
}

// genderedAliases are compact forms that already encode the gender.
var genderedAliases = map[string][2]string{
	"MBB":   {"M", "BASKETBALL"},
	"WBB":   {"W", "BASKETBALL"},
	"MTEN":  {"M", "TENNIS"},
	"WTEN":  {"W", "TENNIS"},
	"MSWIM": {"M", "SWIMMING_DIVING"},
	"WSWIM": {"W", "SWIMMING_DIVING"},
}

var (
	reCanonPunct = regexp.MustCompile("[’'`./\\\\\\-_:]")
	reWomenWord  = regexp.MustCompile(`\bWOMEN(S)?\b`)
	reMenWord    = regexp.MustCompile(`\bMEN(S)?\b`)
)

// canonNormalize upper-cases s for alias lookup: "&" becomes " AND ",
// punctuation becomes spaces, whitespace collapses.
func canonNormalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", " AND ")
	s = reCanonPunct.ReplaceAllString(s, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// detectGender returns "W" or "M" when the normalized phrase carries a
// gender marker, otherwise "".
func detectGender(norm string) string {
	words := strings.Fields(norm)
	hasWord := func(w string) bool {
		for _, x := range words {
			if x == w {
				return true
			}
		}
		return false
	}
	if strings.Contains(norm, "WOMEN") || hasWord("W") {
		return "W"
	}
	if strings.Contains(norm, "MEN") || hasWord("M") {
		return "M"
	}
	return ""
}

// Resolve maps a free-form sport string ("WBB", "womens swimming") to its
// canonical display name. It returns "" when the sport is not recognized;
// callers should then fall back to the raw string.
func Resolve(raw string) string {
	norm := canonNormalize(raw)

	if gc, ok := genderedAliases[norm]; ok {
		return canonicalSports[gc]
	}

	g := detectGender(norm)

	cleaned := reWomenWord.ReplaceAllString(norm, "")
	cleaned = strings.TrimSpace(reMenWord.ReplaceAllString(cleaned, ""))

	// Punctuation stripping turns "MEN'S" into "MEN S"; removing the gender
	// word leaves the possessive "S" (or a bare "W"/"M" marker) behind, which
	// would defeat the alias lookup. Drop those leftovers.
	var kept []string
	for _, w := range strings.Fields(cleaned) {
		switch w {
		case "S", "M", "W":
			continue
		}
		kept = append(kept, w)
	}
	cleaned = strings.Join(kept, " ")

	cat, ok := sportAliases[cleaned]
	if !ok || g == "" {
		return ""
	}
	return canonicalSports[[2]string{g, cat}]
}
