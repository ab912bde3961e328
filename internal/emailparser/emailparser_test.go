package emailparser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func wantSet(t *testing.T, got map[string]struct{}, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d emails %v, want %d %v", len(got), got, len(want), want)
	}
	for _, w := range want {
		if _, ok := got[w]; !ok {
			t.Fatalf("missing %q in %v", w, got)
		}
	}
}

func TestFindEmails_Mailto(t *testing.T) {
	t.Parallel()

	doc := docFrom(t, `<div><a href="mailto:coach@example.edu?subject=Recruiting">Email</a></div>`)
	wantSet(t, FindEmails(doc.Selection), "coach@example.edu")
}

func TestFindEmails_ObfuscatedText(t *testing.T) {
	t.Parallel()

	doc := docFrom(t, `<p>Contact: jane [at] example [dot] edu</p>`)
	wantSet(t, FindEmails(doc.Selection), "jane@example.edu")
}

func TestFindEmails_NoMatches(t *testing.T) {
	t.Parallel()

	doc := docFrom(t, `<p>No contact information listed.</p>`)
	if got := FindEmails(doc.Selection); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

// TestFindEmails_AdjacentCells ensures cell boundaries survive text
// extraction; otherwise "Doe" and the address would fuse into one token.
func TestFindEmails_AdjacentCells(t *testing.T) {
	t.Parallel()

	doc := docFrom(t, `<tr><td>Jane Doe</td><td>jane.doe@example.edu</td></tr>`)
	wantSet(t, FindEmails(doc.Selection), "jane.doe@example.edu")
}

func TestFindEmailsAnywhere_Attributes(t *testing.T) {
	t.Parallel()

	doc := docFrom(t, `<div data-contact="coach(at)example(dot)edu" title="staff"></div>`)
	wantSet(t, FindEmailsAnywhere(doc), "coach@example.edu")
}

func TestFindEmailsAnywhere_Script(t *testing.T) {
	t.Parallel()

	doc := docFrom(t, `<script>var a='me&#64;example.com';</script>`)
	wantSet(t, FindEmailsAnywhere(doc), "me@example.com")
}

func TestDecodeScriptEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		script string
		want   string
	}{
		{
			name:   "entity encoded",
			script: `var a='me&#64;example.com';`,
			want:   "me@example.com",
		},
		{
			name:   "mailto prefix",
			script: `var a='mailto:me@example.com';`,
			want:   "me@example.com",
		},
		{
			// {"rot":"it"} is eyJyb3QiOiJpdCJ9; uryyb@rknzcyr.pbz is
			// ROT13 of hello@example.com.
			name:   "rot13 directive",
			script: `document.write('<a class="email eyJyb3QiOiJpdCJ9">x</a>'); var a='uryyb@rknzcyr.pbz';`,
			want:   "hello@example.com",
		},
		{
			name:   "no var a",
			script: `console.log("nothing here");`,
			want:   "",
		},
		{
			name:   "decodes to garbage",
			script: `var a='not-an-email';`,
			want:   "",
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := DecodeScriptEmail(c.script); got != c.want {
				t.Fatalf("DecodeScriptEmail = %q, want %q", got, c.want)
			}
		})
	}
}

func TestJoinedText(t *testing.T) {
	t.Parallel()

	doc := docFrom(t, `<tr><td>Head Coach</td><td>Jane Doe</td></tr>`)
	got := JoinedText(doc.Selection)
	if got != "Head Coach Jane Doe" {
		t.Fatalf("JoinedText = %q", got)
	}
}
