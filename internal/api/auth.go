package api

import (
	"context"
	"net/http"

	"table-order-kiosk/internal/envelope"
	"table-order-kiosk/internal/model"
)

// Login signs a staff member in on the kiosk and caches the credentials.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/auth/login", req, "")
	if err != nil {
		return model.LoginResponse{}, err
	}
	out, ok := envelope.DecodeObject[model.LoginResponse](raw)
	c.logShape("/api/auth/login", ok)
	if c.creds != nil && out.Token != "" {
		_ = c.creds.SetToken(out.Token)
		_ = c.creds.SetUser(out.User)
	}
	return out, nil
}

func (c *Client) Profile(ctx context.Context) (model.User, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, "user")
	if err != nil {
		return model.User{}, err
	}
	user, ok := envelope.DecodeObject[model.User](raw)
	c.logShape("/api/auth/me", ok)
	return user, nil
}

// Logout always drops the cached credentials, even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, "")
	if c.creds != nil {
		c.creds.ClearCredentials()
	}
	return err
}
