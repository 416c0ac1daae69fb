package grading

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// AnswerUnit is one detected question, task or section of a submission.
type AnswerUnit struct {
	Label       string `json:"label"`
	Content     string `json:"content"`
	Topic       string `json:"topic"`
	MaxMarks    int    `json:"max_marks"`
	StartOffset int    `json:"start_offset"`
}

type markerClass int

// Lower values win when two classes match at the same offset.
const (
	classTask markerClass = iota
	classSection
	classQuestion
	classNumbered
	classLettered
)

type markerPattern struct {
	class markerClass
	re    *regexp.Regexp
	label func(id string) string
}

// Group 1 spans the marker itself; groups 2+ carry its number or letter.
// Task, section and question markers may appear anywhere; numbered and
// lettered items must open a line, optionally behind markdown decoration.
var markerPatterns = []markerPattern{
	{classTask, regexp.MustCompile(`(?i)\b((?:task[ \t]*(\d+))|(?:(\d+)[.)][ \t]*task\b))`), prefixed("Task ")},
	{classSection, regexp.MustCompile(`(?i)\b((?:section[ \t]*(\d+))|(?:(\d+)[.)][ \t]*section\b))`), prefixed("Section ")},
	{classQuestion, regexp.MustCompile(`(?i)\b((?:question[ \t]*(\d+))|(?:q[ \t]*(\d+)))\b`), prefixed("Q")},
	{classNumbered, regexp.MustCompile(`(?m)^[ \t#*>]*((\d{1,2})[.)])(?:[ \t]|$)`), prefixed("Item ")},
	{classLettered, regexp.MustCompile(`(?m)^[ \t#*>]*(([a-h])[.)])(?:[ \t]|$)`), prefixed("Part ")},
}

func prefixed(p string) func(string) string {
	return func(id string) string { return p + id }
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)

type marker struct {
	offset int
	class  markerClass
	label  string
}

// Segment splits text into answer units using the package defaults.
func Segment(text string) []AnswerUnit {
	return defaultGrader.Segment(text)
}

// Segment splits text into answer units at detected markers. Each unit is
// classified and given nominal marks from its word count. Text before the
// first marker is treated as preamble and not marked.
func (g *Grader) Segment(text string) []AnswerUnit {
	markers := findMarkers(text)
	if len(markers) == 0 {
		return g.paragraphUnits(text)
	}

	units := make([]AnswerUnit, 0, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].offset
		}
		content := strings.TrimSpace(text[m.offset:end])
		if len([]rune(content)) < g.cfg.MinUnitChars {
			continue
		}
		units = append(units, g.unit(m.label, content, m.offset))
	}
	return units
}

func findMarkers(text string) []marker {
	byOffset := map[int]marker{}
	for _, p := range markerPatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			id := firstGroup(text, loc[4:])
			m := marker{offset: loc[2], class: p.class, label: p.label(strings.ToLower(id))}
			if prev, ok := byOffset[m.offset]; ok && prev.class <= m.class {
				continue
			}
			byOffset[m.offset] = m
		}
	}

	out := make([]marker, 0, len(byOffset))
	for _, m := range byOffset {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].offset < out[j].offset })
	return out
}

// firstGroup returns the first participating capture group in loc pairs.
func firstGroup(text string, loc []int) string {
	for i := 0; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 {
			return text[loc[i]:loc[i+1]]
		}
	}
	return ""
}

func (g *Grader) paragraphUnits(text string) []AnswerUnit {
	var units []AnswerUnit
	start := 0
	bounds := paragraphBreak.FindAllStringIndex(text, -1)
	bounds = append(bounds, []int{len(text), len(text)})
	for _, b := range bounds {
		raw := text[start:b[0]]
		content := strings.TrimSpace(raw)
		if len([]rune(content)) > g.cfg.FallbackParagraphChars {
			offset := start + strings.Index(raw, content)
			units = append(units, g.unit("Section "+strconv.Itoa(len(units)+1), content, offset))
		}
		start = b[1]
	}
	return units
}

func (g *Grader) unit(label, content string, offset int) AnswerUnit {
	return AnswerUnit{
		Label:       label,
		Content:     content,
		Topic:       Classify(content),
		MaxMarks:    MarksForWords(len(strings.Fields(content))),
		StartOffset: offset,
	}
}

// MarksForWords is the nominal mark allocation for an answer of n words.
// It is flat above 50 words.
func MarksForWords(n int) int {
	switch {
	case n < 20:
		return 2
	case n < 50:
		return 3
	default:
		return 5
	}
}
