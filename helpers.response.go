package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// StatusClientClosedRequest is the Nginx non standard status code used when
// the client went away before the response could be sent.
const StatusClientClosedRequest = 499

// CustomResponseWriter records the status code and body size
// written by the wrapped handler for stats and access logs.
type CustomResponseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
	wrote bool
}

// NewCustomResponseWriter provides CustomResponseWriter with 200 as status code.
func NewCustomResponseWriter(rw http.ResponseWriter) *CustomResponseWriter {
	return &CustomResponseWriter{
		ResponseWriter: rw,
		code:           http.StatusOK,
	}
}

// WriteHeader implements http.WriteHeader interface.
func (cw *CustomResponseWriter) WriteHeader(code int) {
	if !cw.wrote {
		cw.code = code
		cw.wrote = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.Write interface.
func (cw *CustomResponseWriter) Write(bytes []byte) (int, error) {
	if !cw.wrote {
		cw.WriteHeader(cw.code)
	}

	n, err := cw.ResponseWriter.Write(bytes)
	cw.bytes += n
	return n, err
}

// Status returns the written status code.
func (cw *CustomResponseWriter) Status() int {
	return cw.code
}

// Bytes returns bytes written as response body.
func (cw *CustomResponseWriter) Bytes() int {
	return cw.bytes
}

// Unwrap returns native response writer and used by
// the http.ResponseController during its operation.
func (cw *CustomResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// APIError is the data model sent when an error occurred during request processing.
type APIError struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
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

// abortedByContext sets the status code to 499 in case client cancelled the
// request, and to 504 if the request processing timed out. It reports whether
// the context was already done.
func abortedByContext(ctx context.Context, w http.ResponseWriter) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		w.WriteHeader(http.StatusGatewayTimeout)
	} else {
		w.WriteHeader(StatusClientClosedRequest)
	}
	return err
}

// writeJSON sends data as json unless the request context is already done.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, data interface{}) error {
	if err := abortedByContext(ctx, w); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse is used to send error response to client.
func WriteErrorResponse(ctx context.Context, w http.ResponseWriter, errResp *APIError) error {
	return writeJSON(ctx, w, errResp.Status, errResp)
}

// WriteResponse sends a success payload encoded as is, so each
// resource controls its exact shape.
func WriteResponse(ctx context.Context, w http.ResponseWriter, status int, data interface{}) error {
	return writeJSON(ctx, w, status, data)
}

// WriteNoContent acknowledges a request without any body.
func WriteNoContent(ctx context.Context, w http.ResponseWriter) error {
	if err := abortedByContext(ctx, w); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
