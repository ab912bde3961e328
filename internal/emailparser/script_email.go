package emailparser

import (
	"encoding/base64"
	"encoding/json"
	"html"
	"regexp"
	"strings"
)

var (
	reScriptVar = regexp.MustCompile(`\bvar\s+a\s*=\s*'([^']*)'`)
	reClassAttr = regexp.MustCompile(`\bclass\s*=\s*"([^"]+)"`)

	// reStrictEmail validates decoded output. Stricter than reEmail on
	// purpose: a failed decode must not leak garbage into results.
	reStrictEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// DecodeScriptEmail recovers an email address from an inline JavaScript
// snippet using simple client-side obfuscation. No JavaScript is executed;
// the decoder relies on patterns common in the wild:
//
//   - the candidate address sits in "var a='...'", possibly HTML-entity
//     encoded ('&#64;' for '@');
//   - a Base64 JSON token inside the generated class attribute carries
//     de-obfuscation directives: {"rot":"it"} for ROT13, {"rmv":"<s>"} for
//     injected substrings to remove, and {"h":"m"} style single-character
//     substitutions (real 'h' was written as 'm').
//
// Directives apply in order: HTML-unescape, removals, character
// substitutions, ROT13. The result is validated; anything that does not look
// like an email decodes to "".
func DecodeScriptEmail(script string) string {
	m := reScriptVar.FindStringSubmatch(script)
	if len(m) != 2 {
		return ""
	}

	addr := strings.TrimSpace(html.UnescapeString(m[1]))

	// A clear-text "mailto:" prefix is stripped here; a ROT13'd one
	// ("znvygb:") only surfaces after decoding, so strip again below.
	addr = strings.TrimPrefix(addr, mailtoScheme)

	dirs := scriptDirectives(script)

	for _, rm := range dirs.removals {
		if rm != "" {
			addr = strings.ReplaceAll(addr, rm, "")
		}
	}

	if len(dirs.subst) > 0 {
		rs := []rune(addr)
		for i, r := range rs {
			if orig, ok := dirs.subst[r]; ok {
				rs[i] = orig
			}
		}
		addr = string(rs)
	}

	if dirs.rot13 {
		addr = rot13(addr)
	}

	addr = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(addr), mailtoScheme))
	if reStrictEmail.MatchString(addr) {
		return addr
	}
	return ""
}

// directives holds the de-obfuscation instructions found in a snippet.
type directives struct {
	rot13    bool
	removals []string
	subst    map[rune]rune // obfuscated -> real
}

// scriptDirectives scans class="..." attributes for Base64 JSON directive
// tokens. Only classes that look email-related ("email", "emailLink",
// "required") are considered, so ordinary CSS classes are not mistaken for
// directives.
func scriptDirectives(script string) directives {
	out := directives{subst: map[rune]rune{}}

	for _, ca := range reClassAttr.FindAllStringSubmatch(script, -1) {
		classVal := ca[1]
		if !strings.Contains(classVal, "email") && !strings.Contains(classVal, "required") {
			continue
		}

		for _, tok := range strings.Fields(classVal) {
			// Directive tokens are short Base64 ("eyJ..."); bounds skip
			// regular CSS class names cheaply.
			if len(tok) < 8 || len(tok) > 80 {
				continue
			}

			obj, ok := decodeBase64JSON(tok)
			if !ok {
				continue
			}

			if v, ok := obj["rot"]; ok && v == "it" {
				out.rot13 = true
			}
			if v, ok := obj["rmv"]; ok && v != "" {
				out.removals = append(out.removals, v)
			}
			for k, v := range obj {
				if k == "rot" || k == "rmv" {
					continue
				}
				// {"h":"m"}: real 'h' was written as 'm'. Store the
				// reverse mapping for decoding.
				kr, vr := []rune(k), []rune(v)
				if len(kr) == 1 && len(vr) == 1 {
					out.subst[vr[0]] = kr[0]
				}
			}
		}
	}

	return out
}

// decodeBase64JSON decodes tok as standard or URL-safe Base64 holding a JSON
// object of string keys and values.
func decodeBase64JSON(tok string) (map[string]string, bool) {
	for len(tok)%4 != 0 {
		tok += "="
	}

	b, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		if b, err = base64.URLEncoding.DecodeString(tok); err != nil {
			return nil, false
		}
	}

	var obj map[string]string
	if err := json.Unmarshal(b, &obj); err != nil || len(obj) == 0 {
		return nil, false
	}
	return obj, true
}

func rot13(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune('a' + (r-'a'+13)%26)
		case r >= 'A' && r <= 'Z':
			b.WriteRune('A' + (r-'A'+13)%26)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
