// Package chunker splits oversized submissions into request-sized pieces.
//
// Splitting walks a fallback ladder (paragraphs, lines, sentences) and
// uses the first rung that produces more than one section. Sections are
// packed greedily into chunks; anything still over budget afterwards is
// sliced at a fixed character width. Separators stay attached to the
// section before them, so joining the chunk texts in order gives back the
// original document byte for byte.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mind-engage/mindengage-marker/internal/tokens"
)

// MaxChunks bounds how many remote calls a single document may cost.
// Callers enforce it; Split itself never fails.
const MaxChunks = 10

// Chunk is one request-sized slice of a document.
type Chunk struct {
	Index           int    `json:"index"`
	Total           int    `json:"total"`
	Text            string `json:"text"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

var ladder = []*regexp.Regexp{
	regexp.MustCompile(`\n[ \t]*\n\s*`), // blank-line paragraphs
	regexp.MustCompile(`\n`),            // single lines
	regexp.MustCompile(`[.!?]+\s*`),     // sentences
}

// Split returns the ordered chunks of text for a per-chunk token budget.
// A text that already fits comes back as a single chunk; empty text gives
// no chunks. A non-positive budget disables splitting.
func Split(text string, maxTokens int) []Chunk {
	texts := Texts(text, maxTokens)
	out := make([]Chunk, len(texts))
	for i, t := range texts {
		out[i] = Chunk{Index: i, Total: len(texts), Text: t, EstimatedTokens: tokens.Estimate(t)}
	}
	return out
}

// Texts is Split without the bookkeeping.
func Texts(text string, maxTokens int) []string {
	if text == "" {
		return nil
	}
	if maxTokens <= 0 || tokens.Estimate(text) <= maxTokens {
		return []string{text}
	}

	sections := []string{text}
	for _, re := range ladder {
		if s := splitAfter(text, re); len(s) > 1 {
			sections = s
			break
		}
	}

	packed := pack(sections, maxTokens)

	width := tokens.Budget(maxTokens)
	out := make([]string, 0, len(packed))
	for _, c := range packed {
		if tokens.Estimate(c) <= maxTokens {
			out = append(out, c)
			continue
		}
		out = append(out, slice(c, width)...)
	}
	return out
}

// Count reports how many chunks Split would produce.
func Count(text string, maxTokens int) int {
	return len(Texts(text, maxTokens))
}

// splitAfter cuts text after every match of re. A trailing match does not
// create an empty section.
func splitAfter(text string, re *regexp.Regexp) []string {
	var out []string
	start := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		end := loc[1]
		if end <= start || end >= len(text) {
			continue
		}
		out = append(out, text[start:end])
		start = end
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func pack(sections []string, maxTokens int) []string {
	var (
		out   []string
		cur   strings.Builder
		runes int
	)
	for _, s := range sections {
		n := utf8.RuneCountInString(s)
		if cur.Len() > 0 && charsToTokens(runes+n) > maxTokens {
			out = append(out, cur.String())
			cur.Reset()
			runes = 0
		}
		cur.WriteString(s)
		runes += n
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// slice cuts s every width runes regardless of structure.
func slice(s string, width int) []string {
	var out []string
	r := []rune(s)
	for len(r) > 0 {
		n := width
		if n > len(r) {
			n = len(r)
		}
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return out
}

func charsToTokens(n int) int {
	return (n + tokens.CharsPerToken - 1) / tokens.CharsPerToken
}
