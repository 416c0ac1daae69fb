package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore_Empty(t *testing.T) {
	q := Score("", "Marketing")
	require.Equal(t, Missing, q.Label)
	require.Zero(t, q.Score)
	require.Equal(t, Reasoning(Missing), q.Reasoning)

	q = Score("   short  ", "Marketing")
	require.Equal(t, Missing, q.Label)
}

func TestScore_LongOnTopicAnswerIsCapped(t *testing.T) {
	sentence := "Customers respond to the brand because pricing and promotion shape demand, for example a discount campaign. "
	var sb strings.Builder
	for len(strings.Fields(sb.String())) < 200 {
		sb.WriteString(sentence)
	}

	q := Score(sb.String(), "Marketing")
	require.Equal(t, Excellent, q.Label)
	require.Equal(t, MaxQuality, q.Score)
	require.GreaterOrEqual(t, q.Words, 200)
	require.Greater(t, q.Coverage, 0.0)
}

func TestScore_Penalties(t *testing.T) {
	req := require.New(t)

	// two words, one of nine finance keywords
	q := Score("Profit rose.", "Financial Analysis")
	req.InDelta((0.85+0.30/9)*0.65, q.Score, 1e-9)
	req.Equal(Poor, q.Label)

	offTopic := "The weather today was quite pleasant and the sky was very blue."
	q = Score(offTopic, "Marketing")
	req.InDelta(0.85*0.95*0.75, q.Score, 1e-9)
	req.Equal(Satisfactory, q.Label)
	req.Zero(q.Coverage)

	// no vocabulary means no coverage penalty
	q = Score(offTopic, GeneralTopic)
	req.InDelta(0.85*0.95, q.Score, 1e-9)
	req.Equal(Good, q.Label)
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, Excellent},
		{0.85, Excellent},
		{0.84, Good},
		{0.75, Good},
		{0.60, Satisfactory},
		{0.59, Poor},
		{0.40, Poor},
		{0.39, Missing},
		{0, Missing},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, LabelFor(tt.score), "score %.2f", tt.score)
	}
}
