package keywords

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatcher_Present(t *testing.T) {
	req := require.New(t)
	m, err := New([]string{"Market", "demand", "supply chain", "", "demand"})
	req.NoError(err)
	req.Equal(3, m.Size())

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"case insensitive", "The MARKET grew", []string{"market"}},
		{"substring", "Marketing budgets", []string{"market"}},
		{"phrase across whitespace", "a broken supply\n  chain", []string{"supply chain"}},
		{"presence not frequency", "demand demand demand", []string{"demand"}},
		{"several", "market demand and supply chain", []string{"market", "demand", "supply chain"}},
		{"none", "nothing relevant", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Present(tt.in)
			req.Len(got, len(tt.want))
			for _, w := range tt.want {
				req.Contains(got, w)
			}
			req.Equal(len(tt.want), m.Count(tt.in))
			req.Equal(len(tt.want) > 0, m.Any(tt.in))
		})
	}
}

func TestMatcher_EmptyVocabulary(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	require.Zero(t, m.Size())
	require.Empty(t, m.Present("anything at all"))
}

func TestMustNew(t *testing.T) {
	m := MustNew("because", "therefore")
	require.True(t, m.Any("It fell because it was heavy"))
	require.ElementsMatch(t, []string{"because", "therefore"}, m.Words())
}
