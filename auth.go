package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// DefaultLoginPath is where [HandleUnauthorized] sends the session after
// a 401 response.
const DefaultLoginPath = "/login"

// TokenStore is the part of a token store the adapter needs. It reads the
// token before every request and clears it after a 401.
type TokenStore interface {
	// Token returns the stored token, or "" when there is none.
	Token(ctx context.Context) (string, error)
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Redirector moves the active session to another location, for example
// the login entry point.
type Redirector interface {
	Redirect(ctx context.Context, location string)
}

// RedirectFunc adapts a function to [Redirector].
type RedirectFunc func(ctx context.Context, location string)

func (f RedirectFunc) Redirect(ctx context.Context, location string) {
	f(ctx, location)
}

// BearerAuth adds "Authorization: <scheme> <token>" when store holds a
// token. Requests go out unauthenticated when it does not.
func BearerAuth(store TokenStore, scheme string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			token, err := store.Token(ctx)
			if err != nil {
				return nil, fmt.Errorf("%s %s: read auth token: %w", req.Method, req.Path, err)
			}

			if token != "" {
				req.SetHeader("Authorization", scheme+" "+token)
			}

			return next(ctx, req)
		}
	}
}

// HandleUnauthorized clears the stored token and redirects to loginPath
// once for every 401 response. The response itself is passed on unchanged.
// Either store or redirector may be nil.
func HandleUnauthorized(store TokenStore, redirector Redirector, loginPath string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next(ctx, req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			var clearErr error
			if store != nil {
				// The request context may already be done; the token must go regardless.
				clearErr = store.Clear(context.WithoutCancel(ctx))
			}

			if redirector != nil {
				redirector.Redirect(ctx, loginPath)
			}

			if clearErr != nil {
				return nil, errors.Join(newResponseError(req, resp), fmt.Errorf("clear auth token: %w", clearErr))
			}

			return resp, nil
		}
	}
}
