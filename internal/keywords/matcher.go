// Package keywords finds which words of a fixed vocabulary occur in a text.
// Matching is case-insensitive substring matching over an Aho-Corasick
// automaton, so each text is scanned once whatever the vocabulary size.
package keywords

import (
	"strings"
	"sync"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

type Matcher struct {
	mu    sync.Mutex
	m     *goahocorasick.Machine
	words []string
}

// New builds a matcher. Empty entries are ignored and duplicates collapse.
func New(words []string) (*Matcher, error) {
	norm := lo.Uniq(lo.FilterMap(words, func(w string, _ int) (string, bool) {
		n := normalize(w)
		return n, n != ""
	}))
	mt := &Matcher{words: norm}
	if len(norm) == 0 {
		return mt, nil
	}
	patterns := lo.Map(norm, func(w string, _ int) []rune { return []rune(w) })
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	mt.m = m
	return mt, nil
}

// MustNew is New for package-level vocabularies.
func MustNew(words ...string) *Matcher {
	m, err := New(words)
	if err != nil {
		panic(err)
	}
	return m
}

// Size is the number of distinct vocabulary entries.
func (mt *Matcher) Size() int { return len(mt.words) }

// Words returns the normalised vocabulary.
func (mt *Matcher) Words() []string { return append([]string(nil), mt.words...) }

// Present returns the set of vocabulary entries found in text.
func (mt *Matcher) Present(text string) map[string]struct{} {
	found := map[string]struct{}{}
	if mt.m == nil {
		return found
	}
	content := []rune(normalize(text))
	if len(content) == 0 {
		return found
	}
	mt.mu.Lock()
	terms := mt.m.MultiPatternSearch(content, false)
	mt.mu.Unlock()
	for _, t := range terms {
		found[string(t.Word)] = struct{}{}
	}
	return found
}

// Count is the number of distinct vocabulary entries present in text.
func (mt *Matcher) Count(text string) int { return len(mt.Present(text)) }

// Any reports whether at least one entry occurs in text.
func (mt *Matcher) Any(text string) bool { return mt.Count(text) > 0 }

// normalize lowercases and collapses whitespace runs to one space.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
