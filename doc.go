// Package client provides the HTTP adapter for the starter application API.
//
// The client wraps [github.com/go-resty/resty/v2] behind a small envelope
// model ([Request], [Response]) and an ordered middleware chain. Every call
// takes a [context.Context]; canceling it aborts the call.
//
// # Basic Usage
//
//	c := client.New(cfg.APIURL,
//	    client.WithTokenStore(store),
//	    client.WithRedirector(redirector),
//	)
//
//	if err := c.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	resp, err := c.Send(ctx, client.NewRequest(http.MethodGet, "/users/{id}").
//	    SetPathParam("id", "42"))
//
// # Configuration
//
// All configuration is supplied as [Option] functions passed to [New].
// Invalid values are silently ignored and the default is retained;
// all configuration is validated when [Client.Connect] is called.
//
// # Middleware
//
// The built-in chain, outermost first, is [RequestID], [Logging], the
// [Metrics] middleware when configured, [BearerAuth] and
// [HandleUnauthorized] when a token store is configured, the middlewares
// given to [WithMiddleware], and finally [RateLimit] when a limiter is
// configured.
//
// # Authentication
//
// With [WithTokenStore] every request carries "Authorization: Bearer
// <token>" while the store holds a token. A 401 response clears the store
// and calls the [Redirector] with the login path once. HTTP Basic
// authentication is configured with [WithBasicAuth]. The two methods are
// mutually exclusive.
//
// # Errors
//
// Non-2xx responses are returned as [*ResponseError] and match
// [ErrUnauthorized] for status 401. Requests that produced no response
// are [*TransportError]. A canceled context yields an error matching
// [ErrCanceled]. The client never retries.
//
// # Logging
//
// Implement [RequestLogger] and supply it via [WithRequestLogger] to
// integrate with your logging library, or use [NewSlogLogger]. The default
// [NoopLogger] discards all log output. Ensure your implementation redacts
// credentials and tokens from request and response bodies before
// persisting logs.
package client
