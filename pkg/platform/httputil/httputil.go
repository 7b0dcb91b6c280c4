// Package httputil centralizes JSON envelope writing and body decoding so
// handlers stay thin and error responses stay uniform.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	dErrors "victus/pkg/domain-errors"
	"victus/pkg/requestcontext"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteJSON writes a success envelope with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

// WriteError translates a coded error into its HTTP status and error
// envelope. Only the user-facing message ships; technical detail stays in
// the logs. An uncoded error degrades to a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := dErrors.AsError(err)
	if !ok {
		de = dErrors.New(dErrors.CodeInternal, "Ha ocurrido un error inesperado.")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(de.Code))
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success:   false,
		Code:      string(de.Code),
		Message:   de.Message,
		Path:      r.URL.Path,
		Timestamp: requestcontext.Now(r.Context()).UTC(),
	})
}

// Decode parses the request body into T. A malformed body yields a
// bad_request coded error ready for WriteError.
func Decode[T any](r *http.Request) (*T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "El cuerpo de la solicitud no es un JSON válido.")
	}
	return &v, nil
}
