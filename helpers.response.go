package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

var EmptyData = struct{}{}

// APIError is the data model sent when an error occurred during request processing.
type APIError struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

// APIResponse is the data model sent when a request succeed.
// We use the omitempty flag on the `total` field. This helps
// set the value for listing calls only.
type APIResponse struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Total     *int        `json:"total,omitempty"`
	Data      interface{} `json:"data"`
}

func NewAPIError(requestid string, status int, message string, data interface{}) *APIError {
	return &APIError{
		RequestID: requestid,
		Status:    status,
		Message:   message,
		Data:      data,
	}
}

func GenericResponse(requestid string, status int, message string, total *int, data interface{}) *APIResponse {
	return &APIResponse{
		RequestID: requestid,
		Status:    status,
		Message:   message,
		Total:     total,
		Data:      data,
	}
}

// WriteErrorResponse is used to send error response to client. In case the client closed the
// request we log the stats with the Nginx non standard status code 499 (Client Closed Request).
// In case of request processing timeout we set the status code to 504.
func WriteErrorResponse(ctx context.Context, w http.ResponseWriter, errResp *APIError) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return ctx.Err()
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(errResp.Status)
	return json.NewEncoder(w).Encode(errResp)
}

// WriteResponse is used to send success api response to client. It sets the status code to 499
// in case client cancelled the request, and to 504 if the request processing timed out.
func WriteResponse(ctx context.Context, w http.ResponseWriter, resp *APIResponse) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return ctx.Err()
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(resp.Status)
	return json.NewEncoder(w).Encode(resp)
}

// StatusRecorder wraps http.ResponseWriter to record the response
// status code for the per-status statistics.
type StatusRecorder struct {
	http.ResponseWriter
	code  int
	wrote bool
}

// NewStatusRecorder provides a StatusRecorder with 200 as status code.
func NewStatusRecorder(rw http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: rw, code: http.StatusOK}
}

// WriteHeader implements the http.ResponseWriter interface.
func (sr *StatusRecorder) WriteHeader(code int) {
	if !sr.wrote {
		sr.code = code
		sr.wrote = true
		sr.ResponseWriter.WriteHeader(code)
	}
}

// Write implements the http.ResponseWriter interface.
func (sr *StatusRecorder) Write(bytes []byte) (int, error) {
	if !sr.wrote {
		sr.WriteHeader(sr.code)
	}
	return sr.ResponseWriter.Write(bytes)
}

// Status returns the written status code.
func (sr *StatusRecorder) Status() int {
	return sr.code
}

// Unwrap returns the native response writer.
func (sr *StatusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}
