package client

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	minTimeout = 100 * time.Millisecond
	maxTimeout = 5 * time.Minute
)

type Option func(*Options)

type Options struct {
	timeout           time.Duration
	requestLogger     RequestLogger
	requestHeaders    map[string]string
	userAgent         string
	basicAuthUsername string
	basicAuthPassword string
	authScheme        string
	tokenStore        TokenStore
	redirector        Redirector
	loginPath         string
	middlewares       []Middleware
	metrics           *Metrics
	rateLimiter       *rate.Limiter
}

func newClientOptions() *Options {
	return &Options{
		timeout:       30 * time.Second,
		requestLogger: &NoopLogger{},
		requestHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		userAgent:  "starter-api-client",
		authScheme: "Bearer",
		loginPath:  DefaultLoginPath,
	}
}

// Validate reports the first invalid option value.
func (o *Options) Validate() error {
	if o.timeout < minTimeout {
		return fmt.Errorf("timeout must be at least %v", minTimeout)
	}

	if o.timeout > maxTimeout {
		return fmt.Errorf("timeout must not exceed %v", maxTimeout)
	}

	if o.requestLogger == nil {
		return errors.New("requestLogger must not be nil")
	}

	if strings.TrimSpace(o.authScheme) == "" {
		return errors.New("authScheme must not be empty")
	}

	if !strings.HasPrefix(o.loginPath, "/") {
		return fmt.Errorf("loginPath must start with '/', got %q", o.loginPath)
	}

	if o.basicAuthUsername != "" && o.tokenStore != nil {
		return errors.New("cannot use both basic auth and a token store - choose one")
	}

	return nil
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout >= minTimeout {
			o.timeout = timeout
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}

func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = strings.TrimSpace(header)

		if header == "" || strings.EqualFold(header, "Content-Type") || strings.EqualFold(header, "Accept") {
			return
		}

		o.requestHeaders[header] = value
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

func WithBasicAuth(username, password string) Option {
	return func(o *Options) {
		o.basicAuthUsername = username
		o.basicAuthPassword = password
	}
}

func WithAuthScheme(scheme string) Option {
	return func(o *Options) {
		o.authScheme = scheme
	}
}

// WithTokenStore enables bearer authentication from store and token
// clearing on 401 responses.
func WithTokenStore(store TokenStore) Option {
	return func(o *Options) {
		if store != nil {
			o.tokenStore = store
		}
	}
}

func WithRedirector(redirector Redirector) Option {
	return func(o *Options) {
		if redirector != nil {
			o.redirector = redirector
		}
	}
}

func WithLoginPath(path string) Option {
	return func(o *Options) {
		if path = strings.TrimSpace(path); path != "" {
			o.loginPath = path
		}
	}
}

// WithMiddleware appends middlewares. They run inside the built-in ones,
// in the order given.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *Options) {
		for _, mw := range mws {
			if mw != nil {
				o.middlewares = append(o.middlewares, mw)
			}
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(o *Options) {
		if limiter != nil {
			o.rateLimiter = limiter
		}
	}
}
