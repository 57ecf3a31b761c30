package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/apperr"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeAppError maps the error taxonomy onto HTTP statuses. Internal
// failures are logged and surfaced as a generic message so storage detail
// never leaks to clients.
func writeAppError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperr.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	case apperr.KindInvalidInput, apperr.KindPolicyViolation:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", GetRequestID(r.Context())).
			Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
