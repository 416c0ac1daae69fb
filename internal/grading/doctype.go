package grading

import "github.com/mind-engage/mindengage-marker/internal/keywords"

// Document types.
const (
	TypeLabReport    = "Lab Report"
	TypeProgramming  = "Programming Assignment"
	TypeBusinessCase = "Business Case Study"
	TypeEssay        = "Essay"
	TypeGeneral      = "Assignment"
)

type docType struct {
	name    string
	matcher *keywords.Matcher
}

var docTypes = []docType{
	{TypeLabReport, keywords.MustNew("experiment", "hypothesis", "apparatus", "procedure", "measurement", "observation", "lab report")},
	{TypeProgramming, keywords.MustNew("function", "algorithm", "source code", "compile", "variable", "array", "debug", "program")},
	{TypeBusinessCase, keywords.MustNew("company", "case study", "management", "stakeholder", "strategy", "profit", "customer")},
	{TypeEssay, keywords.MustNew("essay", "thesis", "argument", "in conclusion", "this essay", "paragraph")},
}

// DetectType guesses the kind of submission from the whole text.
// Two or more matching keywords are needed to leave the general type.
func DetectType(text string) string {
	best, bestCount := TypeGeneral, 1
	for _, t := range docTypes {
		if n := t.matcher.Count(text); n > bestCount {
			best, bestCount = t.name, n
		}
	}
	return best
}
