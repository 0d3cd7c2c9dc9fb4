package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Bump only on
// breaking envelope changes.
const envelopeVersion = 1

// Envelope is the uniform response wrapper every endpoint returns.
type Envelope struct {
	V       int           `json:"v" doc:"Envelope version"`
	Success bool          `json:"success" doc:"Whether the request succeeded"`
	Data    any           `json:"data,omitempty" doc:"Response payload on success"`
	Error   *ErrorPayload `json:"error,omitempty" doc:"Error payload on failure"`
}

// ErrorPayload carries a machine-readable error inside the envelope.
type ErrorPayload struct {
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every response body in the envelope. Registered
// on the huma config so handlers return bare payloads.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if isErrorStatus(status) {
		payload := &ErrorPayload{Code: "INTERNAL", Message: "unknown error"}

		switch e := v.(type) {
		case *APIError:
			payload.Code = e.Code
			payload.Message = e.Message
			payload.Details = e.Details
		case error:
			var apiErr *APIError
			if errors.As(e, &apiErr) {
				payload.Code = apiErr.Code
				payload.Message = apiErr.Message
				payload.Details = apiErr.Details
			} else {
				payload.Message = e.Error()
			}
		}

		return &Envelope{V: envelopeVersion, Success: false, Error: payload}, nil
	}

	return &Envelope{V: envelopeVersion, Success: true, Data: v}, nil
}

// isErrorStatus reports whether the status string names a 4xx or 5xx code.
func isErrorStatus(status string) bool {
	return len(status) == 3 && (status[0] == '4' || status[0] == '5')
}
