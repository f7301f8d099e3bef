package api

import (
	"context"
	"net/http"

	"tasktrack/internal/domain"
)

func (c *Client) Register(ctx context.Context, in domain.Profile) (domain.Registration, error) {
	var resp domain.Registration
	if err := c.do(ctx, http.MethodPost, "auth/register", in, &resp); err != nil {
		c.logger().Error("register", "email", in.Email, "error", err)
		return domain.Registration{}, err
	}
	return resp, nil
}

func (c *Client) Login(ctx context.Context, in domain.Credentials) (domain.AuthTokens, error) {
	var resp domain.AuthTokens
	if err := c.do(ctx, http.MethodPost, "auth/login", in, &resp); err != nil {
		c.logger().Error("login", "email", in.Email, "error", err)
		return domain.AuthTokens{}, err
	}
	return resp, nil
}
