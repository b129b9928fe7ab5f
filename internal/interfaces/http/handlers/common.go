// Common helper functions for HTTP handlers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/VitaQuote/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps an application error to its HTTP status via the error
// code table.  Server-side errors are masked; their detail belongs in logs,
// not responses.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String()}
	if errors.IsServerError(code) {
		resp.Message = "internal server error"
	} else {
		resp.Message = err.Error()
		if appErr, ok := err.(*errors.AppError); ok {
			resp.Message = appErr.Message
			resp.Detail = appErr.Detail
		}
	}
	writeJSON(w, status, resp)
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}
