package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Q1:  Define profit.":   "q1 define profit",
		"  Part (a) — Analyse ": "part a analyse",
		"":                      "",
		"!!!":                   "",
	}
	for in, want := range cases {
		require.Equal(t, want, fold(in), in)
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"task 1", "", 6},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"section 2", "section 3", 1},
		{"naïve", "naive", 1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, editDistance(tc.a, tc.b), "%q/%q", tc.a, tc.b)
		require.Equal(t, tc.want, editDistance(tc.b, tc.a), "%q/%q", tc.b, tc.a)
	}
}
