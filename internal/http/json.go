package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
)

// DecodeJSON decodes JSON from the request body into dst. On failure it
// writes a 400 response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody{
			Error:   string(apperrors.ErrCodeValidation),
			Message: "corpo JSON invalido: " + err.Error(),
		})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code. The payload
// is encoded before the header goes out so an encoding failure can still
// surface as a 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects are not recoverable here.
		return
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError renders an error as JSON, mapping the error taxonomy to an
// HTTP status. Errors without a recorded status become 500.
func WriteError(w http.ResponseWriter, err error) {
	status := apperrors.GetStatus(err)
	if status == 0 {
		switch {
		case apperrors.IsValidation(err):
			status = http.StatusUnprocessableEntity
		case apperrors.IsNetwork(err):
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
	}
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	WriteJSON(w, status, errorBody{Error: string(code), Message: err.Error()})
}
