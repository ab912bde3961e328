// Package classify decides whether a block of normalized text names a
// relevant staff role.
//
// The keyword tables below are tuning data, not a correctness contract: they
// encode a precision/recall tradeoff (bare "coach" is an intentional
// catch-all) and are kept as ordered package-level slices so they can be
// extended without touching any pipeline logic.
package classify

import (
	"regexp"
	"strings"
)

// roleKeywords are the inclusion phrases. Matching is substring containment
// over normalized text.
var roleKeywords = []string{
	"head coach",
	"assistant coach",
	"asst coach",
	"associate head coach",
	"associate coach",
	"interim head coach",
	"coach",
	"recruiting",
	"recruiting coordinator",
	"recruiting coord",
	"director of recruiting",
	"recruiting director",
	"recruiting operations",
	"recruiting ops",
	"coordinator of recruiting",
}

// excludeKeywords suppress student and graduate assistants. Nearly every
// roster has them, and their titles often also contain "coach"
// ("Assistant to the Head Coach (Student Assistant)").
var excludeKeywords = []string{
	"student assistant",
	"student asst",
	"student-athlete assistant",
	"graduate assistant",
	"grad assistant",
	"grad asst",
}

// excludeAbbrevs match the GA/SA abbreviations as whole words, with or
// without periods.
var excludeAbbrevs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bga\b`),
	regexp.MustCompile(`(?i)\bg\.a\.`),
	regexp.MustCompile(`(?i)\bsa\b`),
	regexp.MustCompile(`(?i)\bs\.a\.`),
}

// IsExcluded reports whether text names a student/graduate-assistant role.
// text must already be normalized (see textnorm.Normalize).
func IsExcluded(text string) bool {
	for _, k := range excludeKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	for _, re := range excludeAbbrevs {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsTargetRole reports whether text names a coaching or recruiting role.
//
// Exclusion always wins: a block naming both "graduate assistant" and
// "assistant coach" is rejected regardless of any inclusion match.
func IsTargetRole(text string) bool {
	if IsExcluded(text) {
		return false
	}
	for _, k := range roleKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
