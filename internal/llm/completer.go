// Package llm is the remote completion capability used by remote marking.
package llm

import "context"

// Request is one completion call.
type Request struct {
	System          string
	User            string
	MaxOutputTokens int
	Temperature     float64
}

// Completer turns a prompt into text. Errors wrap ErrRateLimited or
// ErrPayloadTooLarge when the provider reports those conditions; anything
// else is treated as transient by callers.
//
//go:generate mockgen -destination=../mocks/mock_completer.go -package=mocks github.com/mind-engage/mindengage-marker/internal/llm Completer
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
