// Package token persists the API auth token between requests.
//
// A [Store] holds at most one token with last-writer-wins semantics. The
// client reads it before every request and clears it when the API reports
// an authentication failure; the auth service writes it after login.
// Tokens that are JWTs expire at their "exp" claim; opaque tokens live
// until cleared.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKey names the stored token in key-value backends.
const DefaultKey = "token"

var (
	// ErrEmptyToken is returned when storing an empty token.
	ErrEmptyToken = errors.New("token must not be empty")

	// ErrExpired is returned when storing a JWT whose exp is already past.
	ErrExpired = errors.New("token already expired")
)

// Store reads, writes and clears the auth token.
type Store interface {
	// Token returns the stored token, or "" when there is none or it
	// expired.
	Token(ctx context.Context) (string, error)
	// SetToken replaces the stored token.
	SetToken(ctx context.Context, token string) error
	// Clear removes the stored token. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error
}

// Expiry reads the exp claim of a JWT without verifying its signature;
// verification is the API's job. ok is false for opaque tokens and JWTs
// without exp.
func Expiry(token string) (exp time.Time, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

func expired(token string, now time.Time) bool {
	exp, ok := Expiry(token)
	return ok && !now.Before(exp)
}
