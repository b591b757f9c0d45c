package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches any [*ResponseError] with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCanceled matches errors caused by the caller canceling the request
	// context. Such errors also match context.Canceled.
	ErrCanceled = errors.New("request canceled")

	// ErrNoResponse is returned when a middleware returned neither a
	// response nor an error.
	ErrNoResponse = errors.New("middleware returned no response")
)

// ResponseError is returned by [Client.Send] when the API answers with a
// non-2xx status code.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	// Message is the "error" or "message" field of a JSON error body, the
	// raw body otherwise.
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is reports 401 responses as [ErrUnauthorized].
func (e *ResponseError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// TransportError is returned when the request never produced a response,
// for example because the connection was refused or timed out.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsCanceled reports whether err was caused by the caller canceling the
// request. Callers typically ignore these.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// StatusCode returns the HTTP status of a [*ResponseError] in err's chain,
// or 0 when there is none.
func StatusCode(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

func canceledError(method, path string, cause error) error {
	return fmt.Errorf("%s %s: %w: %w", method, path, ErrCanceled, cause)
}

// requestError classifies a failed transport call. Only an explicit cancel
// counts as cancellation; a deadline is a transport failure.
func requestError(ctx context.Context, method, path string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return canceledError(method, path, context.Canceled)
	}
	return &TransportError{Method: method, Path: path, Err: err}
}

func newResponseError(req *Request, resp *Response) *ResponseError {
	return &ResponseError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		Message:    errorMessage(resp.Body),
	}
}

func errorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "(empty error body)"
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return trimmed
	}

	if msg := nestedMessage(payload.Error); msg != "" {
		return msg
	}

	if payload.Message != "" {
		return payload.Message
	}

	return trimmed
}

// nestedMessage accepts both {"error": "msg"} and {"error": {"message": "msg"}}.
func nestedMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}

	return ""
}
