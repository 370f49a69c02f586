package api

import (
	"context"
	"errors"
)

// ErrMissingCredentials is returned before any request when the login form is
// incomplete.
var ErrMissingCredentials = errors.New("correo y contraseña son obligatorios")

type LoginInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ChurchSlug string `json:"churchSlug,omitempty"`
}

// LoginUser is the user object the backend returns from /auth/login.
type LoginUser struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	IsPlatformAdmin bool   `json:"isPlatformAdmin"`
}

type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	User        LoginUser `json:"user"`
	ChurchID    string    `json:"churchId"`
}

// Login authenticates against POST /auth/login. It validates locally first
// and issues no request when the input is incomplete.
func (c *Client) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	var result LoginResult
	if err := c.PostUnauthenticated(ctx, "/auth/login", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
