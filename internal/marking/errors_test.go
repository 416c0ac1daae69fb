package marking

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-marker/internal/llm"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"size limit", &SizeLimitError{Chunks: 12, Limit: 10}, SuggestReduceDocument},
		{"payload too large", fmt.Errorf("chunk 2: %w", llm.ErrPayloadTooLarge), SuggestReduceDocument},
		{"rate limited", fmt.Errorf("after 4 attempts: %w", llm.ErrRateLimited), SuggestReduceBatch},
		{"429 message", errors.New("upstream returned 429"), SuggestReduceBatch},
		{"api key", llm.ErrMissingAPIKey, SuggestCheckConfig},
		{"unauthorized", errors.New("llm upstream 401: Unauthorized"), SuggestCheckConfig},
		{"other", errors.New("connection reset by peer"), SuggestRetryLater},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Suggest(tt.err))
		})
	}
	require.Empty(t, Suggest(nil))
}

func TestUserMessage(t *testing.T) {
	err := &SizeLimitError{Chunks: 12, Limit: 10}
	msg := UserMessage(err)
	require.Contains(t, msg, "needs 12 chunks, limit is 10")
	require.Contains(t, msg, SuggestReduceDocument)
	require.ErrorIs(t, err, ErrSizeLimit)
}
