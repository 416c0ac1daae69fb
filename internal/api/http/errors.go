package http

import (
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-marker/internal/jobs"
	"github.com/mind-engage/mindengage-marker/internal/llm"
	"github.com/mind-engage/mindengage-marker/internal/marking"
)

// statusFor maps the marking error taxonomy onto HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, marking.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, marking.ErrSizeLimit), errors.Is(err, llm.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, marking.UserMessage(err), statusFor(err))
}
