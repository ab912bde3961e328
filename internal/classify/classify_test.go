package classify

import "testing"

func TestIsTargetRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want bool
	}{
		{"john smith head coach", true},
		{"jane doe assistant coach", true},
		{"recruiting coordinator", true},
		{"director of recruiting", true},
		{"volunteer coach", true}, // bare "coach" catch-all
		{"athletic trainer", false},
		{"sports information director", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsTargetRole(c.text); got != c.want {
			t.Fatalf("IsTargetRole(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

// TestIsTargetRole_ExclusionWins verifies the core invariant: exclusion beats
// inclusion, no matter how strong the inclusion match is.
func TestIsTargetRole_ExclusionWins(t *testing.T) {
	t.Parallel()

	cases := []string{
		"assistant to the head coach (student assistant)",
		"graduate assistant coach",
		"grad asst - men's basketball coach",
		"john smith assistant coach ga",
		"jane roe head coach s.a.",
	}
	for _, text := range cases {
		if IsTargetRole(text) {
			t.Fatalf("IsTargetRole(%q) = true, want exclusion to win", text)
		}
	}
}

func TestIsExcluded_WholeWordAbbrevs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want bool
	}{
		{"john smith ga", true},
		{"g.a. jane roe", true},
		{"sa coach", true},
		{"s.a. coach", true},
		// Substrings of longer words must not trigger.
		{"sagan head coach", false},
		{"gallagher assistant coach", false},
	}
	for _, c := range cases {
		if got := IsExcluded(c.text); got != c.want {
			t.Fatalf("IsExcluded(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
