package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAward(t *testing.T) {
	require.Equal(t, 5, Award(5, 0.95))
	require.Equal(t, 2, Award(3, 0.5))
	require.Equal(t, 0, Award(2, 0))
}

func TestGrader_Assess(t *testing.T) {
	g := NewGrader()
	u := AnswerUnit{Label: "Q1", Content: "Profit rose.", Topic: "Financial Analysis", MaxMarks: 2}

	a := g.Assess(u)
	require.Equal(t, "Q1", a.ID)
	require.Equal(t, 2, a.Max)
	require.Equal(t, Award(2, a.Score), a.Awarded)
	require.Equal(t, Poor, a.Quality)
}

func TestGrader_AssessRubric(t *testing.T) {
	req := require.New(t)
	g := NewGrader()
	text := "Q1 Inflation rises because wages grow faster than output, for example in 2022.\n" +
		"Q2 A short answer about nothing in particular."
	units := g.Segment(text)
	req.Len(units, 2)

	r, ok := ParseMemo("Explain the causes of inflation (10 marks)\nCompare fiscal and monetary policy (6 marks)")
	req.True(ok)

	got := g.AssessRubric(r, units, text)
	req.Len(got, 2)
	req.Equal("Explain the causes of inflation", got[0].ID)
	req.Equal(10, got[0].Max)
	req.Equal(6, got[1].Max)
	for _, a := range got {
		req.LessOrEqual(a.Awarded, a.Max)
	}
	req.NotContains(got[0].Reasoning, "Not addressed")
	req.Contains(got[1].Reasoning, "Not addressed: fiscal, monetary, policy.")
}

func TestGrader_AssessRubricWithoutUnits(t *testing.T) {
	text := "Overall the answer explains nothing of note but is long enough."
	got := NewGrader().AssessRubric(DefaultRubric(TypeGeneral), nil, text)
	require.Len(t, got, 4)
	require.Equal(t, "Understanding", got[0].ID)
	require.Equal(t, 20, got[0].Max)
}
