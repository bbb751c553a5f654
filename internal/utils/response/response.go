// Package response provides helpers for writing consistent responses from
// the portal's handlers: JSON for the /api/* endpoints and the banner text
// shown on HTML pages.
//
// Error bodies mirror the exam API's own error shape, so a browser script
// sees the same {status, message, errors} whether the failure came from the
// portal or from the API behind it.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/ugs-portal/internal/api"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the error envelope:
//
//	{ "status": 422, "message": "The given data was invalid.",
//	  "errors": { "email": ["The email field is required."] } }
//
// Errors is never null; a failure without field errors sends {}.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Fallback banner text when an error carries nothing worth showing.
const (
	MsgUnexpected  = "Something went wrong. Please try again."
	MsgUnreachable = "The exam service could not be reached. Please try again later."
)

// WriteJSON writes data as JSON with the given status.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any error into the envelope. An *api.Error keeps its
// status, message and field errors; anything else becomes a 500.
func GeneralError(err error) Response {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		fields := apiErr.Errors
		if fields == nil {
			fields = map[string][]string{}
		}
		return Response{Status: apiErr.Status, Message: apiErr.Message, Errors: fields}
	}
	return Response{
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
		Errors:  map[string][]string{},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Banner turns an error from an API call into the page-local message and
// field errors a page renders inline. The last return value is the HTTP
// status the page should answer with.
//
//	*api.Error        → its message and field errors; 4xx status kept,
//	                    5xx reported as 502
//	unrecognized body → generic message, 502
//	anything else     → "could not be reached", 502
//
// ─────────────────────────────────────────────────────────────────────────────
func Banner(err error) (string, map[string][]string, int) {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = MsgUnexpected
		}
		status := apiErr.Status
		if status >= 500 {
			status = http.StatusBadGateway
		}
		return msg, apiErr.Errors, status
	case errors.Is(err, api.ErrUnrecognizedShape):
		return MsgUnexpected, nil, http.StatusBadGateway
	default:
		return MsgUnreachable, nil, http.StatusBadGateway
	}
}
