package marking

import (
	"strings"

	"github.com/mind-engage/mindengage-marker/internal/grading"
)

// Marking methods reported in the metadata.
const (
	MethodUnits         = "Heuristic (per question)"
	MethodMemoRubric    = "Heuristic (memo rubric)"
	MethodDefaultRubric = "Heuristic (default rubric)"
)

// Report is the outcome of marking one document locally.
type Report struct {
	DocumentID   string      `json:"document_id"`
	Student      string      `json:"student"`
	Assignment   string      `json:"assignment"`
	DetectedType string      `json:"detected_type"`
	Language     string      `json:"language"`
	Method       string      `json:"method"`
	Rubric       string      `json:"rubric,omitempty"`
	Result       ScoreResult `json:"result"`
	Grade        string      `json:"grade"`
	Feedback     string      `json:"feedback"`
	Text         string      `json:"text"`
}

// LocalEngine marks documents with the built-in heuristics.
type LocalEngine struct {
	grader *grading.Grader
}

func NewLocalEngine(g *grading.Grader) *LocalEngine {
	if g == nil {
		g = grading.NewGrader()
	}
	return &LocalEngine{grader: g}
}

// Mark segments, classifies and scores doc. A memo that parses into a
// rubric allocates marks by its sections; an unparseable memo, or a
// document with no detectable answers, falls back to the default rubric
// for the detected document type.
func (e *LocalEngine) Mark(doc Document, memo string) (Report, error) {
	if err := doc.Validate(); err != nil {
		return Report{}, err
	}

	units := e.grader.Segment(doc.Text)
	docType := grading.DetectType(doc.Text)
	rep := Report{
		DocumentID:   doc.ID,
		Student:      doc.student(),
		Assignment:   doc.assignment(),
		DetectedType: docType,
		Language:     detectLanguage(doc.Text),
	}

	var as []grading.Assessment
	switch custom, ok := grading.ParseMemo(memo); {
	case ok:
		rep.Method, rep.Rubric = MethodMemoRubric, custom.Name
		as = e.grader.AssessRubric(custom, units, doc.Text)
	case strings.TrimSpace(memo) != "" || len(units) == 0:
		r := grading.DefaultRubric(docType)
		rep.Method, rep.Rubric = MethodDefaultRubric, r.Name
		as = e.grader.AssessRubric(r, units, doc.Text)
	default:
		rep.Method = MethodUnits
		as = make([]grading.Assessment, 0, len(units))
		for _, u := range units {
			as = append(as, e.grader.Assess(u))
		}
	}

	rep.Result = newScoreResult(as)
	rep.Grade = rep.Result.Grade()
	if rep.Result.Percentage != nil {
		rep.Feedback = grading.Feedback(*rep.Result.Percentage)
	}
	rep.Text = Render(rep)
	return rep, nil
}
