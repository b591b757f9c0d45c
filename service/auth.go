package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	client "github.com/peteraglen/starter-api-client"
	"github.com/peteraglen/starter-api-client/token"
)

// ErrMissingToken is returned when an auth response carries no token.
var ErrMissingToken = errors.New("auth response has no token")

// AuthService wraps the /auth endpoints and owns the token writes.
type AuthService struct {
	base
	store token.Store
}

// Login exchanges credentials for a token and stores it.
func (s *AuthService) Login(ctx context.Context, credentials LoginRequest) (*AuthResponse, error) {
	req := s.request(http.MethodPost, "/auth/login").SetBody(credentials)
	return s.authenticate(ctx, req)
}

// Register creates an account and stores the token it comes with.
func (s *AuthService) Register(ctx context.Context, account RegisterRequest) (*AuthResponse, error) {
	req := s.request(http.MethodPost, "/auth/register").SetBody(account)
	return s.authenticate(ctx, req)
}

// Refresh replaces the stored token with a fresh one. refreshToken may be
// empty when the API refreshes from the current bearer token alone.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	req := s.request(http.MethodPost, "/auth/refresh").
		SetBody(refreshRequest{RefreshToken: refreshToken})
	return s.authenticate(ctx, req)
}

// Logout ends the session on the API and clears the stored token. The
// token is cleared even when the call fails. A 401 means the session was
// already gone and is not reported, so repeated calls do not fail because
// an earlier one cleared the token.
func (s *AuthService) Logout(ctx context.Context) error {
	err := exec(ctx, s.sender, s.request(http.MethodPost, "/auth/logout"))

	var clearErr error
	if s.store != nil {
		clearErr = s.store.Clear(context.WithoutCancel(ctx))
	}

	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	if clearErr != nil {
		return fmt.Errorf("clear auth token: %w", clearErr)
	}

	return nil
}

func (s *AuthService) authenticate(ctx context.Context, req *client.Request) (*AuthResponse, error) {
	auth, err := fetch[*AuthResponse](ctx, s.sender, req)
	if err != nil {
		return nil, err
	}

	if auth.Token == "" {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrMissingToken)
	}

	if s.store == nil {
		return auth, nil
	}

	if err := s.store.SetToken(ctx, auth.Token); err != nil {
		return nil, fmt.Errorf("store auth token: %w", err)
	}

	return auth, nil
}
