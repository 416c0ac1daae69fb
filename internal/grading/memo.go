package grading

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// AcademicVerbs is the vocabulary assigned to sections parsed from a memo.
var AcademicVerbs = []string{"analyse", "evaluate", "explain", "describe", "discuss", "compare", "justify", "identify"}

var memoLine = regexp.MustCompile(`(?i)^(.+?)[\s:(\-–]*(\d+)\s*marks?\)?\s*$`)

// ParseMemo derives a rubric from lines ending in "N marks". Lines that do
// not match are ignored, so the result may cover only part of the memo.
// It returns false when no line parses.
func ParseMemo(memo string) (Rubric, bool) {
	var sections []Section
	for _, line := range strings.Split(memo, "\n") {
		m := memoLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		marks, err := strconv.Atoi(m[2])
		if err != nil || marks <= 0 {
			continue
		}
		name := strings.Trim(strings.TrimSpace(m[1]), " :-–(")
		if name == "" {
			name = "Section " + strconv.Itoa(len(sections)+1)
		}
		sections = append(sections, section(name, Criterion{
			Keywords:         verbsFor(name),
			RequiredConcepts: conceptsOf(name),
			MaxMarks:         marks,
		}))
	}
	if len(sections) == 0 {
		return Rubric{}, false
	}
	r := NewRubric("Memo", sections...)
	r.Custom = true
	return r, true
}

func verbsFor(name string) []string {
	low := strings.ToLower(name)
	verbs := lo.Filter(AcademicVerbs, func(v string, _ int) bool { return strings.Contains(low, v) })
	if len(verbs) == 0 {
		return append([]string(nil), AcademicVerbs...)
	}
	return verbs
}

// conceptsOf keeps the content words of a section heading.
func conceptsOf(name string) []string {
	words := strings.Fields(fold(name))
	return lo.Uniq(lo.Filter(words, func(w string, _ int) bool {
		if len([]rune(w)) < 5 || lo.Contains(AcademicVerbs, w) {
			return false
		}
		_, err := strconv.Atoi(w)
		return err != nil && !lo.Contains(headingWords, w)
	}))
}

var headingWords = []string{"question", "section", "marks", "answer", "about", "their", "which", "should", "briefly"}
