package llm

import "errors"

// Failure kinds reported by a Completer. Implementations wrap one of these
// so callers can branch with errors.Is.
var (
	// ErrRateLimited: the provider asked us to slow down. Retryable.
	ErrRateLimited = errors.New("rate limited")
	// ErrPayloadTooLarge: the request itself exceeds what the provider
	// accepts. Never retryable; the token budget undercounted.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrMissingAPIKey: client constructed without credentials.
	ErrMissingAPIKey = errors.New("missing api key")
	// ErrEmptyResponse: the provider answered without any content.
	ErrEmptyResponse = errors.New("empty completion")
)
