package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Client sends API requests through a middleware chain to a resty
// transport bound to one base URL. It is safe for concurrent use once
// [Client.Connect] has returned.
type Client struct {
	baseURL string
	options *Options

	mu      sync.RWMutex
	rc      *resty.Client
	handler Handler
}

// New creates a client for baseURL. Nothing is validated until
// [Client.Connect] is called.
func New(baseURL string, opts ...Option) *Client {
	options := newClientOptions()

	for _, o := range opts {
		o(options)
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		options: options,
	}
}

// Connect validates the configuration and builds the transport. Calling
// Connect again after a successful call is a no-op.
func (c *Client) Connect(_ context.Context) error {
	if c == nil {
		return errors.New("api client is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler != nil {
		return nil
	}

	if c.baseURL == "" {
		return errors.New("base URL must be set")
	}

	if u, err := url.Parse(c.baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URL %q must be an absolute URL", c.baseURL)
	}

	if err := c.options.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	c.rc = c.newRestyClient()
	c.handler = Chain(c.transport, c.middlewares()...)

	return nil
}

// Send runs req through the middleware chain. Non-2xx responses are
// returned as [*ResponseError], connection failures as [*TransportError]
// and canceled contexts as errors matching [ErrCanceled]. Nothing is
// retried.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if c == nil {
		return nil, errors.New("api client is nil")
	}

	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()

	if handler == nil {
		return nil, errors.New("client not connected - call Connect() first")
	}

	if req == nil {
		return nil, errors.New("request is nil")
	}

	if req.Method == "" {
		return nil, errors.New("request method must be set")
	}

	if req.Header == nil {
		req.Header = make(http.Header)
	}

	resp, err := handler(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrNoResponse)
	}

	if !resp.IsSuccess() {
		return nil, newResponseError(req, resp)
	}

	return resp, nil
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	if c == nil {
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rc != nil {
		c.rc.GetClient().CloseIdleConnections()
	}
}

func (c *Client) newRestyClient() *resty.Client {
	o := c.options

	rc := resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(o.timeout).
		SetHeaders(o.requestHeaders).
		SetHeader("User-Agent", o.userAgent).
		SetLogger(o.requestLogger)

	if o.basicAuthUsername != "" {
		rc.SetBasicAuth(o.basicAuthUsername, o.basicAuthPassword)
	}

	return rc
}

// middlewares returns the built-in chain followed by the caller's own.
func (c *Client) middlewares() []Middleware {
	o := c.options

	mws := []Middleware{RequestID(), Logging(o.requestLogger)}

	if o.metrics != nil {
		mws = append(mws, o.metrics.Middleware())
	}

	if o.tokenStore != nil {
		mws = append(mws, BearerAuth(o.tokenStore, o.authScheme))
	}

	if o.tokenStore != nil || o.redirector != nil {
		mws = append(mws, HandleUnauthorized(o.tokenStore, o.redirector, o.loginPath))
	}

	if len(o.middlewares) > 0 {
		mws = append(mws, requireResponse())
		mws = append(mws, o.middlewares...)
	}

	if o.rateLimiter != nil {
		mws = append(mws, RateLimit(o.rateLimiter))
	}

	return mws
}

func (c *Client) transport(ctx context.Context, req *Request) (*Response, error) {
	if ctx.Err() != nil {
		return nil, requestError(ctx, req.Method, req.Path, ctx.Err())
	}

	r := c.rc.R().SetContext(ctx)

	if len(req.PathParams) > 0 {
		r.SetPathParams(req.PathParams)
	}

	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	if len(req.Header) > 0 {
		r.SetHeaderMultiValues(req.Header)
	}

	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, requestError(ctx, req.Method, req.Path, err)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

// requireResponse turns a (nil, nil) result from a caller middleware into
// [ErrNoResponse] before the built-in middlewares look at it.
func requireResponse() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next(ctx, req)
			if err == nil && resp == nil {
				return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrNoResponse)
			}
			return resp, err
		}
	}
}
