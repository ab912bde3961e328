package sportmatch

import "testing"

func hasToken(tokens map[string]struct{}, t string) bool {
	_, ok := tokens[t]
	return ok
}

func TestTokens_Basketball(t *testing.T) {
	t.Parallel()

	tokens := Tokens("Women's Basketball")

	for _, want := range []string{"women's basketball", "womens basketball", "basketball", "wbkb", "w basketball"} {
		if !hasToken(tokens, want) {
			t.Fatalf("Tokens missing %q: %v", want, tokens)
		}
	}
	if hasToken(tokens, "mbkb") {
		t.Fatalf("women's sport must not derive men's shorthand: %v", tokens)
	}
}

func TestTokens_ShortWordsSkipped(t *testing.T) {
	t.Parallel()

	tokens := Tokens("Track and Field")
	if hasToken(tokens, "and") {
		t.Fatalf("words shorter than 4 chars must not become tokens: %v", tokens)
	}
	if !hasToken(tokens, "track") || !hasToken(tokens, "field") {
		t.Fatalf("expected word tokens for track/field: %v", tokens)
	}
}

func TestTokens_Swimming(t *testing.T) {
	t.Parallel()

	tokens := Tokens("Men's Swimming & Diving")
	for _, want := range []string{"swim", "swimming", "swimming and diving", "swimming & diving", "swimdive"} {
		if !hasToken(tokens, want) {
			t.Fatalf("Tokens missing %q: %v", want, tokens)
		}
	}
}

// TestTokens_AliasOverlap verifies a sport name and its known shorthand
// derive token sets overlapping on at least one shared token after
// canonicalization.
func TestTokens_AliasOverlap(t *testing.T) {
	t.Parallel()

	full := Tokens("Women's Basketball")
	alias := Tokens(Resolve("WBB"))

	overlap := false
	for tok := range full {
		if hasToken(alias, tok) {
			overlap = true
			break
		}
	}
	if !overlap {
		t.Fatalf("no shared token between %v and %v", full, alias)
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text  string
		sport string
		want  bool
	}{
		{"jane doe head coach women's basketball", "Women's Basketball", true},
		{"wbkb assistant coach", "Women's Basketball", true},
		{"john smith head coach men's tennis", "Women's Basketball", false},
		{"anything at all", "", true}, // empty token set: no constraint
	}
	for _, c := range cases {
		if got := Match(c.text, c.sport); got != c.want {
			t.Fatalf("Match(%q, %q) = %v, want %v", c.text, c.sport, got, c.want)
		}
	}
}

func TestMatch_DivingOnlyExclusion(t *testing.T) {
	t.Parallel()

	sport := "Women's Swimming & Diving"

	if Match("john smith, diving coach", sport) {
		t.Fatal("diving-only block must be rejected for a swim target")
	}
	if !Match("jane doe, swimming & diving coach", sport) {
		t.Fatal("swimming & diving block must match a swim target")
	}
	// The rule only applies to swim targets.
	if !Match("john smith, diving coach", "Diving") {
		t.Fatal("diving target must still match diving blocks")
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"WBB", "Women's Basketball"},
		{"mbb", "Men's Basketball"},
		{"Women's Basketball", "Women's Basketball"},
		{"womens swimming", "Women's Swimming & Diving"},
		{"MEN'S TENNIS", "Men's Tennis"},
		{"wten", "Women's Tennis"},
		{"mswim", "Men's Swimming & Diving"},
		{"curling", ""},       // unknown sport
		{"basketball", ""},    // no gender marker
		{"w bball", "Women's Basketball"},
	}
	for _, c := range cases {
		if got := Resolve(c.raw); got != c.want {
			t.Fatalf("Resolve(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestTokens_Deterministic(t *testing.T) {
	t.Parallel()

	a := Tokens("Men's Soccer")
	b := Tokens("Men's Soccer")
	if len(a) != len(b) {
		t.Fatalf("token sets differ: %v vs %v", a, b)
	}
	for tok := range a {
		if !hasToken(b, tok) {
			t.Fatalf("token sets differ on %q", tok)
		}
	}
	if !hasToken(a, "msoc") || hasToken(a, "wsoc") {
		t.Fatalf("unexpected soccer shorthand: %v", a)
	}
}
