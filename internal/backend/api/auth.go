package api

import (
	"context"
	"net/http"

	"taskpad/internal/service"
)

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds service.Credentials) (service.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var res service.AuthResult
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   path,
		body:   creds,
		out:    &res,
		anon:   true,
	})
	if err != nil {
		return service.AuthResult{}, err
	}
	if res.TokenType == "" {
		res.TokenType = "bearer"
	}
	return res, nil
}
