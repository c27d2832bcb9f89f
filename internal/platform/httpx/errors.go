package httpx

import (
	"errors"
	"net/http"

	"github.com/conferia/conferia/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Every treasury error kind is recoverable by the caller, so the detail
// carries the full domain message.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrSequenceViolation):
		Problem(w, http.StatusConflict, "Sequence Violation", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrConfigurationConflict):
		Problem(w, http.StatusConflict, "Configuration Conflict", err.Error())
	case errors.Is(err, shared.ErrWindowExpired):
		Problem(w, http.StatusGone, "Window Expired", err.Error())
	case errors.Is(err, shared.ErrValidationRequired):
		Problem(w, http.StatusBadRequest, "Validation Required", err.Error())
	case errors.Is(err, shared.ErrCollaboratorUnavailable):
		Problem(w, http.StatusBadGateway, "Collaborator Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
