package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"  Head   Coach ", "head coach"},
		{"A\tB\nC", "a b c"},
		{"", ""},
		{"already normal", "already normal"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestNormalize_Deterministic verifies Normalize is idempotent: a second
// application never changes the result.
func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	in := "  Jane   DOE \n Assistant  Coach "
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Fatalf("Normalize not idempotent: %q vs %q", once, twice)
	}
}

func TestDeobfuscate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"jane [at] example [dot] com", "jane@example.com"},
		{"jane(at)example(dot)com", "jane@example.com"},
		{"jane at example dot com", "jane@example.com"},
		{"JANE [AT] EXAMPLE [DOT] COM", "JANE@EXAMPLE.COM"},
		{"jane  [at]  example  [dot]  com", "jane@example.com"},
		{"mixed jane(at)example dot com", "mixed jane@example.com"},
		{"no obfuscation here", "no obfuscation here"},
		// "cat" and "candot" must not trigger the word forms.
		{"the cat sat", "the cat sat"},
	}
	for _, c := range cases {
		if got := Deobfuscate(c.in); got != c.want {
			t.Fatalf("Deobfuscate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
