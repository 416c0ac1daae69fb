package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMemo(t *testing.T) {
	req := require.New(t)
	memo := "Marking memo\n" +
		"Question 1: Explain the causes of inflation (10 marks)\n" +
		"Award credit for any reasonable answer.\n" +
		"2. Compare fiscal and monetary policy - 15 marks\n" +
		"Describe the method 1 mark\n"

	r, ok := ParseMemo(memo)
	req.True(ok)
	req.True(r.Custom)
	req.Len(r.Sections, 3)
	req.Equal(26, r.TotalMarks)
	req.True(r.Consistent())

	s := r.Sections[0]
	req.Equal("Question 1: Explain the causes of inflation", s.Name)
	req.Equal(10, s.TotalMarks)
	req.Equal([]string{"explain"}, s.Criteria[0].Keywords)
	req.Equal([]string{"causes", "inflation"}, s.Criteria[0].RequiredConcepts)
	req.Equal(1.0, s.Criteria[0].Weight)

	req.Equal("2. Compare fiscal and monetary policy", r.Sections[1].Name)
	req.Equal([]string{"compare"}, r.Sections[1].Criteria[0].Keywords)
	req.Equal(1, r.Sections[2].TotalMarks)
}

func TestParseMemo_VocabularyFallback(t *testing.T) {
	r, ok := ParseMemo("Market structure (8 marks)")
	require.True(t, ok)
	require.Equal(t, AcademicVerbs, r.Sections[0].Criteria[0].Keywords)
}

func TestParseMemo_NothingParses(t *testing.T) {
	for _, memo := range []string{"", "no marks here", "Question 1 (0 marks)"} {
		_, ok := ParseMemo(memo)
		require.False(t, ok, memo)
	}
}

func TestDefaultRubric(t *testing.T) {
	for _, typ := range []string{TypeEssay, TypeLabReport, TypeProgramming, TypeBusinessCase, TypeGeneral} {
		t.Run(typ, func(t *testing.T) {
			r := DefaultRubric(typ)
			require.Equal(t, typ, r.Name)
			require.False(t, r.Custom)
			require.True(t, r.Consistent())
			require.Equal(t, 50, r.TotalMarks)
			for _, s := range r.Sections {
				require.NotEmpty(t, s.Criteria)
			}
		})
	}

	require.Equal(t, TypeGeneral, DefaultRubric("Poetry").Name)

	a := DefaultRubric(TypeEssay)
	a.Sections[0].Name = "changed"
	require.Equal(t, "Introduction", DefaultRubric(TypeEssay).Sections[0].Name)
}
