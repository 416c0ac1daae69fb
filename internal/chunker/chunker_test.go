package chunker

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-marker/internal/tokens"
)

func TestTexts_Ladder(t *testing.T) {
	a, b, c := strings.Repeat("a", 30), strings.Repeat("b", 30), strings.Repeat("c", 30)

	tests := []struct {
		name string
		in   string
		max  int
		want []string
	}{
		{"empty", "", 10, nil},
		{"fits", "short text", 10, []string{"short text"}},
		{"no budget", strings.Repeat("z", 500), 0, []string{strings.Repeat("z", 500)}},
		{
			"paragraphs",
			a + "\n\n" + b + "\n\n" + c,
			10,
			[]string{a + "\n\n", b + "\n\n", c},
		},
		{
			"single newlines when no blank lines",
			a + "\n" + b + "\n" + c,
			10,
			[]string{a + "\n", b + "\n", c},
		},
		{
			"sentences when no newlines",
			a + ". " + b + "! " + c + "?",
			10,
			[]string{a + ". ", b + "! ", c + "?"},
		},
		{
			"small sections are packed together",
			"one\n\ntwo\n\n" + strings.Repeat("x", 40),
			5,
			[]string{"one\n\ntwo\n\n", strings.Repeat("x", 20), strings.Repeat("x", 20)},
		},
		{
			"force slice of one enormous section",
			strings.Repeat("w", 100),
			5,
			[]string{strings.Repeat("w", 20), strings.Repeat("w", 20), strings.Repeat("w", 20), strings.Repeat("w", 20), strings.Repeat("w", 20)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Texts(tt.in, tt.max))
		})
	}
}

func TestSplit_Metadata(t *testing.T) {
	req := require.New(t)
	text := strings.Repeat("p", 30) + "\n\n" + strings.Repeat("q", 30)
	chunks := Split(text, 10)
	req.Len(chunks, 2)
	for i, c := range chunks {
		req.Equal(i, c.Index)
		req.Equal(2, c.Total)
		req.Equal(tokens.Estimate(c.Text), c.EstimatedTokens)
	}
	req.Equal(2, Count(text, 10))
	req.Empty(Split("", 10))
}

func TestTexts_BoundAndRoundTrip(t *testing.T) {
	req := require.New(t)
	rng := rand.New(rand.NewSource(7))
	seps := []string{" ", " ", " ", ". ", "! ", "\n", "\n\n", "? "}

	for i := 0; i < 200; i++ {
		var sb strings.Builder
		words := rng.Intn(400)
		for w := 0; w < words; w++ {
			sb.WriteString(strings.Repeat("é", 1+rng.Intn(12)))
			sb.WriteString(seps[rng.Intn(len(seps))])
		}
		text := sb.String()
		max := 1 + rng.Intn(60)

		got := Texts(text, max)
		req.Equal(text, strings.Join(got, ""), "round trip, case %d", i)
		for _, c := range got {
			req.NotEmpty(c)
			req.LessOrEqual(tokens.Estimate(c), max, "case %d", i)
		}
	}
}
