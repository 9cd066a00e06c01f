package apiruntime

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pgapigen/pgapigen"
)

// StatusFor maps an error from this module's taxonomy onto the HTTP
// status code an emitted handler should return. Unrecognized errors map
// to 500, matching ErrDatabase's "safe message" default.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, pgapigen.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, pgapigen.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pgapigen.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, pgapigen.ErrDatabase), errors.Is(err, pgapigen.ErrEmission), errors.Is(err, pgapigen.ErrIntrospection), errors.Is(err, pgapigen.ErrClassification):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape every emitted handler writes on failure.
type errorBody struct {
	Error  string              `json:"error"`
	Issues []pgapigen.Issue    `json:"issues,omitempty"`
}

// WriteError writes err to w as JSON using StatusFor's status code. A
// *ValidationError's issues are surfaced in full; every other error kind
// exposes only its safe top-level message, never a wrapped driver error.
// A NotFound error writes a literal `null` body instead of an error
// object, matching the shape GET/PATCH/DELETE return for a present row.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusNotFound {
		_, _ = w.Write([]byte("null"))
		return
	}
	body := errorBody{Error: safeMessage(err, status)}
	var verr *pgapigen.ValidationError
	if errors.As(err, &verr) {
		body.Issues = verr.Issues
	}
	_ = json.NewEncoder(w).Encode(body)
}

func safeMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
