package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

// Every response body is exactly one of the three envelope shapes:
// {data}, {validationErrors} or {serverError}.

func writeData(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, map[string]any{"data": payload})
}

func writeValidationErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"validationErrors": fields})
}

func writeServerError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"serverError": message})
}

// writeDomainError converts a core error into its envelope. Invalid
// input keeps the field-style shape so callers handle one format for
// both schema and semantic validation failures.
func writeDomainError(w http.ResponseWriter, err error) {
	if domain.IsKind(err, domain.ErrInvalidInput) {
		writeValidationErrors(w, map[string]string{"input": err.Error()})
		return
	}
	writeServerError(w, mapErrorToHTTPStatus(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
