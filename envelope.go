package client

import (
	"net/http"
	"net/url"
)

// Request is the transport-neutral description of one API call. A Request
// is built per call and must not be reused after it has been sent.
type Request struct {
	Method string
	// Path is relative to the client base URL and may contain {name}
	// templates that are filled from PathParams.
	Path       string
	PathParams map[string]string
	Query      url.Values
	Header     http.Header
	Body       any
}

// NewRequest returns a Request with an initialised header map.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// SetPathParam sets a path template value and returns the request.
func (r *Request) SetPathParam(name, value string) *Request {
	if r.PathParams == nil {
		r.PathParams = make(map[string]string)
	}
	r.PathParams[name] = value
	return r
}

// SetQueryParam sets a query parameter and returns the request.
func (r *Request) SetQueryParam(name, value string) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Set(name, value)
	return r
}

// SetHeader sets a header and returns the request.
func (r *Request) SetHeader(name, value string) *Request {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(name, value)
	return r
}

// SetBody sets the JSON body and returns the request.
func (r *Request) SetBody(body any) *Request {
	r.Body = body
	return r
}

// Response is what the transport returned for a Request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
