package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-request identifier for log correlation.
const RequestIDHeader = "X-Request-ID"

// Handler sends a request and returns the raw response. A Handler returns
// a non-nil Response for every status code; turning non-2xx responses into
// errors is left to [Client.Send].
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a Handler. It may inspect or mutate the request before
// calling next, inspect the response afterwards, or return an error without
// calling next at all.
type Middleware func(next Handler) Handler

// Chain composes middlewares around h. The first middleware is the
// outermost: it sees the request first and the response last.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// RequestID sets [RequestIDHeader] to a random UUID unless the caller
// already supplied one.
func RequestID() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Header.Get(RequestIDHeader) == "" {
				req.SetHeader(RequestIDHeader, uuid.NewString())
			}
			return next(ctx, req)
		}
	}
}

// Logging writes one line per request to logger.
func Logging(logger RequestLogger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			switch {
			case errors.Is(err, ErrCanceled):
				logger.Debugf("%s %s canceled after %s", req.Method, req.Path, elapsed)
			case err != nil:
				logger.Warnf("%s %s failed after %s: %v", req.Method, req.Path, elapsed, err)
			case !resp.IsSuccess():
				logger.Warnf("%s %s -> %d (%s) request_id=%s", req.Method, req.Path, resp.StatusCode, elapsed, req.Header.Get(RequestIDHeader))
			default:
				logger.Debugf("%s %s -> %d (%s) request_id=%s", req.Method, req.Path, resp.StatusCode, elapsed, req.Header.Get(RequestIDHeader))
			}

			return resp, err
		}
	}
}

// RateLimit blocks until limiter admits the request. A request whose
// context ends while waiting is never sent.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, requestError(ctx, req.Method, req.Path, err)
			}
			return next(ctx, req)
		}
	}
}
