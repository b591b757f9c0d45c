package service

import (
	"context"
	"net/http"
	"strconv"
)

// UserService wraps the /users endpoints and the current-user lookup.
type UserService struct {
	base
}

// Me returns the user the stored token belongs to.
func (s *UserService) Me(ctx context.Context) (*User, error) {
	return fetch[*User](ctx, s.sender, s.request(http.MethodGet, "/auth/me"))
}

// List returns one page of users. Zero values leave paging to the API.
func (s *UserService) List(ctx context.Context, params ListUsersParams) (*Page[User], error) {
	req := s.request(http.MethodGet, "/users")

	if params.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(params.Page))
	}

	if params.PageSize > 0 {
		req.SetQueryParam("pageSize", strconv.Itoa(params.PageSize))
	}

	return fetchPage[User](ctx, s.sender, req)
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*User, error) {
	req := s.request(http.MethodGet, "/users/{id}").
		SetPathParam("id", strconv.FormatInt(id, 10))

	return fetch[*User](ctx, s.sender, req)
}

// Update applies the set fields of update and returns the stored user.
func (s *UserService) Update(ctx context.Context, id int64, update UpdateUserRequest) (*User, error) {
	req := s.request(http.MethodPut, "/users/{id}").
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(update)

	return fetch[*User](ctx, s.sender, req)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	req := s.request(http.MethodDelete, "/users/{id}").
		SetPathParam("id", strconv.FormatInt(id, 10))

	return exec(ctx, s.sender, req)
}
