package marking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-marker/internal/llm"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrSizeLimit  = errors.New("size limit exceeded")
	ErrTransient  = errors.New("transient failure")
)

// ValidationError reports missing or malformed fields at the marking boundary.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %v", e.Err)
	}
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

func newValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Err: err}
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &ValidationError{Fields: fields, Err: err}
}

// SizeLimitError is returned before any remote call when a document or
// batch cannot be processed within the configured bounds.
type SizeLimitError struct {
	Chunks int
	Limit  int
	Reason string
}

func (e *SizeLimitError) Error() string {
	if e.Reason != "" {
		return "document too large: " + e.Reason
	}
	return fmt.Sprintf("document too large: needs %d chunks, limit is %d", e.Chunks, e.Limit)
}

func (e *SizeLimitError) Unwrap() error { return ErrSizeLimit }

// Suggestions shown next to failures.
const (
	SuggestReduceDocument = "Try splitting the document into smaller parts or removing non-essential content."
	SuggestReduceBatch    = "Try submitting fewer documents per batch or waiting a minute before retrying."
	SuggestCheckConfig    = "Check the service configuration (API key, model and endpoint)."
	SuggestRetryLater     = "Please try again in a few minutes."
)

// Suggest picks an actionable hint for err from its message.
func Suggest(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, ErrSizeLimit), errors.Is(err, llm.ErrPayloadTooLarge),
		containsAny(msg, "too large", "size", "chunk", "context length"):
		return SuggestReduceDocument
	case errors.Is(err, llm.ErrRateLimited), containsAny(msg, "rate", "batch", "429"):
		return SuggestReduceBatch
	case errors.Is(err, llm.ErrMissingAPIKey), containsAny(msg, "api key", "config", "unauthorized", "401"):
		return SuggestCheckConfig
	default:
		return SuggestRetryLater
	}
}

// UserMessage is the original message followed by a suggestion.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error() + ". " + Suggest(err)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
