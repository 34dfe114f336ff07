package handler

import (
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nitrmart-api/internal/domain"
)

// statusFor maps a domain error class to an HTTP status. Uniqueness conflicts
// are reported as plain validation failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// httpError renders err with the status of its class.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, statusFor(err), err)
}

// writeErrorStatus renders err under an explicit status. Field errors become
// {"<field>": "<message>"}; everything else becomes {"detail": "..."}.
func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, status, verrs)
		return
	}
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		if fe.Field != "" {
			writeJSON(w, status, map[string]string{fe.Field: fe.Message})
			return
		}
		writeDetail(w, status, fe.Message)
		return
	}
	writeDetail(w, status, genericMessage(status))
}

func genericMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Authentication credentials were not provided or are invalid."
	case http.StatusForbidden:
		return "You do not have permission to perform this action."
	case http.StatusNotFound:
		return "Not found."
	}
	return "Invalid request."
}
