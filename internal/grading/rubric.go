package grading

import (
	"github.com/samber/lo"

	"github.com/mind-engage/mindengage-marker/internal/keywords"
)

type Rubric struct {
	Name       string    `json:"name"`
	Sections   []Section `json:"sections"`
	TotalMarks int       `json:"total_marks"`
	Custom     bool      `json:"custom"`
}

type Section struct {
	Name       string      `json:"name"`
	Criteria   []Criterion `json:"criteria"`
	TotalMarks int         `json:"total_marks"`
}

type Criterion struct {
	Keywords         []string `json:"keywords"`
	RequiredConcepts []string `json:"required_concepts,omitempty"`
	MaxMarks         int      `json:"max_marks"`
	Weight           float64  `json:"weight"`
}

// NewRubric totals the sections and weights their criteria.
func NewRubric(name string, sections ...Section) Rubric {
	r := Rubric{Name: name}
	for _, s := range sections {
		s.TotalMarks = lo.SumBy(s.Criteria, func(c Criterion) int { return c.MaxMarks })
		for i := range s.Criteria {
			if s.TotalMarks > 0 {
				s.Criteria[i].Weight = float64(s.Criteria[i].MaxMarks) / float64(s.TotalMarks)
			}
		}
		r.Sections = append(r.Sections, s)
	}
	r.TotalMarks = r.Sum()
	return r
}

// Sum adds up section totals.
func (r Rubric) Sum() int {
	return lo.SumBy(r.Sections, func(s Section) int { return s.TotalMarks })
}

// Consistent reports whether TotalMarks agrees with the sections.
func (r Rubric) Consistent() bool { return r.Sum() == r.TotalMarks }

func (s Section) matcher() *keywords.Matcher {
	var words []string
	for _, c := range s.Criteria {
		words = append(words, c.Keywords...)
		words = append(words, c.RequiredConcepts...)
	}
	return keywords.MustNew(words...)
}

func (c Criterion) matcher() *keywords.Matcher {
	return keywords.MustNew(append(append([]string(nil), c.Keywords...), c.RequiredConcepts...)...)
}

func crit(marks int, words ...string) Criterion {
	return Criterion{Keywords: words, MaxMarks: marks}
}

func section(name string, cs ...Criterion) Section {
	return Section{Name: name, Criteria: cs}
}

// Built-in rubrics per document type. Callers get copies.
var defaultRubrics = map[string]func() Rubric{
	TypeEssay: func() Rubric {
		return NewRubric(TypeEssay,
			section("Introduction", crit(10, "introduce", "thesis", "this essay", "purpose", "background")),
			section("Argument and Analysis", crit(12, "argue", "analyse", "analyze", "evaluate", "however"), crit(8, "because", "therefore", "consequently")),
			section("Use of Evidence", crit(10, "evidence", "for example", "such as", "source", "according to")),
			section("Structure and Style", crit(5, "firstly", "furthermore", "in addition", "finally")),
			section("Conclusion", crit(5, "in conclusion", "to conclude", "overall", "summary")),
		)
	},
	TypeLabReport: func() Rubric {
		return NewRubric(TypeLabReport,
			section("Aim and Hypothesis", crit(5, "aim", "hypothesis", "predict", "objective")),
			section("Method", crit(10, "method", "procedure", "apparatus", "measure", "variable")),
			section("Results", crit(15, "result", "table", "graph", "data", "observation")),
			section("Discussion", crit(15, "because", "trend", "error", "evaluate", "compare")),
			section("Conclusion", crit(5, "conclusion", "supports", "rejects", "overall")),
		)
	},
	TypeProgramming: func() Rubric {
		return NewRubric(TypeProgramming,
			section("Correctness", crit(20, "output", "input", "algorithm", "function", "return")),
			section("Code Quality", crit(10, "readable", "modular", "naming", "refactor", "complexity")),
			section("Documentation", crit(10, "comment", "document", "explain", "readme")),
			section("Testing", crit(10, "test", "edge case", "debug", "assert")),
		)
	},
	TypeBusinessCase: func() Rubric {
		return NewRubric(TypeBusinessCase,
			section("Problem Identification", crit(10, "problem", "issue", "challenge", "identify")),
			section("Analysis", crit(12, "swot", "pestle", "analyse", "analysis", "competitive"), crit(8, "because", "therefore", "impact")),
			section("Recommendations", crit(15, "recommend", "should", "implement", "solution", "strategy")),
			section("Presentation", crit(5, "in conclusion", "summary", "overall")),
		)
	},
	TypeGeneral: func() Rubric {
		return NewRubric(TypeGeneral,
			section("Understanding", crit(20, "define", "concept", "describe", "identify", "explain")),
			section("Explanation", crit(15, "because", "therefore", "since", "as a result")),
			section("Application", crit(10, "example", "such as", "for instance", "apply")),
			section("Presentation", crit(5, "in conclusion", "firstly", "finally", "overall")),
		)
	},
}

// DefaultRubric returns the built-in rubric for a document type,
// falling back to the general assignment rubric.
func DefaultRubric(docType string) Rubric {
	if f, ok := defaultRubrics[docType]; ok {
		return f()
	}
	return defaultRubrics[TypeGeneral]()
}
