package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"highest count wins", "The company raised prices to reach new customers and grow its brand", "Marketing"},
		{"case insensitive", "PROFIT and REVENUE both fell", "Financial Analysis"},
		{"tie goes to first topic", "profit strategy", "Business Strategy"},
		{"nothing matches", "hello world", GeneralTopic},
		{"empty", "", GeneralTopic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestTopicKeywords(t *testing.T) {
	require.Nil(t, TopicKeywords(GeneralTopic))
	require.Contains(t, TopicKeywords("Marketing"), "brand")

	kw := TopicKeywords("Marketing")
	kw[0] = "changed"
	require.NotEqual(t, "changed", TopicKeywords("Marketing")[0])
}

func TestTopics_Order(t *testing.T) {
	ts := Topics()
	require.NotEmpty(t, ts)
	require.Equal(t, "Business Strategy", ts[0].Name)
}
