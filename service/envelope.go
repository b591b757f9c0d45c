package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	client "github.com/peteraglen/starter-api-client"
)

// Envelope is the API's success wrapper: {"data": ...}.
type Envelope[T any] struct {
	Data  T             `json:"data"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// Page is the paginated variant of [Envelope].
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether another page follows.
func (m PageMeta) HasNext() bool {
	return m.Page < m.TotalPages
}

// ErrorPayload is the "error" member of an envelope. It decodes from both
// {"error": "msg"} and {"error": {"code": "...", "message": "msg"}}.
type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (p *ErrorPayload) UnmarshalJSON(b []byte) error {
	var msg string
	if err := json.Unmarshal(b, &msg); err == nil {
		*p = ErrorPayload{Message: msg}
		return nil
	}

	type object ErrorPayload
	var obj object
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}

	*p = ErrorPayload(obj)
	return nil
}

// ErrNoData is returned when a success response carries neither data nor
// an error payload.
var ErrNoData = errors.New("response has no data")

// EnvelopeError is returned when a 2xx response carries an error payload
// instead of data.
type EnvelopeError struct {
	Method  string
	Path    string
	Payload ErrorPayload
}

func (e *EnvelopeError) Error() string {
	if e.Payload.Code != "" {
		return fmt.Sprintf("%s %s: %s (%s)", e.Method, e.Path, e.Payload.Message, e.Payload.Code)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Payload.Message)
}

// Sender is the adapter the facade sends requests through.
// *client.Client implements it.
type Sender interface {
	Send(ctx context.Context, req *client.Request) (*client.Response, error)
}

// fetch sends req and unwraps the data field of the response envelope.
// Adapter errors are returned unchanged.
func fetch[T any](ctx context.Context, s Sender, req *client.Request) (T, error) {
	var zero T

	resp, err := s.Send(ctx, req)
	if err != nil {
		return zero, err
	}

	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return zero, fmt.Errorf("decode %s %s response: %w", req.Method, req.Path, err)
	}

	if isNull(env.Data) {
		if env.Error != nil {
			return zero, &EnvelopeError{Method: req.Method, Path: req.Path, Payload: *env.Error}
		}
		return zero, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrNoData)
	}

	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return zero, fmt.Errorf("decode %s %s data: %w", req.Method, req.Path, err)
	}

	return data, nil
}

func fetchPage[T any](ctx context.Context, s Sender, req *client.Request) (*Page[T], error) {
	resp, err := s.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	var page Page[T]
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", req.Method, req.Path, err)
	}

	if page.Data == nil {
		page.Data = []T{}
	}

	return &page, nil
}

// exec sends req and ignores any response body.
func exec(ctx context.Context, s Sender, req *client.Request) error {
	_, err := s.Send(ctx, req)
	return err
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
