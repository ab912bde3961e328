package pipeline

import (
	"sort"
	"strings"
)

// emailSet deduplicates addresses case-insensitively while preserving the
// first-seen casing for display.
type emailSet struct {
	byLower map[string]string
}

func newEmailSet() *emailSet {
	return &emailSet{byLower: make(map[string]string)}
}

func (s *emailSet) add(e string) {
	e = strings.TrimSpace(e)
	if e == "" {
		return
	}
	k := strings.ToLower(e)
	if _, ok := s.byLower[k]; !ok {
		s.byLower[k] = e
	}
}

func (s *emailSet) addAll(emails map[string]struct{}) {
	for e := range emails {
		s.add(e)
	}
}

func (s *emailSet) len() int { return len(s.byLower) }

// emails returns the set sorted case-insensitively, for reproducible output.
func (s *emailSet) emails() []string {
	out := make([]string, 0, len(s.byLower))
	for _, e := range s.byLower {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
