// internal/api/respond.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"content-analyzer/internal/common/errors"
)

type errorBody struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Details string           `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	stdErr := errors.AsStandardError(err)
	writeJSON(w, errors.HTTPStatus(stdErr.Code), errorBody{
		Code:    stdErr.Code,
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

// decodeJSON reads one JSON object from a size-capped body. Unknown fields
// are rejected so typos in settings updates surface.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.Is(err, io.EOF):
			return errors.NewInvalidInputError("request body is empty")
		case stderrors.As(err, &maxErr):
			return errors.NewInvalidInputError("request body too large")
		default:
			return errors.NewInvalidInputError("malformed JSON: " + err.Error())
		}
	}
	return nil
}
