package apiclient

import (
	"context"
	"net/http"

	"institute-service/internal/auth"
	"institute-service/internal/recovery"
)

// Login signs in and keeps the session for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	var resp auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, auth.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.SetSession(&resp)
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	var resp auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	c.SetSession(&resp)
	return &resp, nil
}

// Refresh rotates the stored refresh token.
func (c *Client) Refresh(ctx context.Context) (*auth.AuthResponse, error) {
	current := c.Session()
	if current == nil {
		return nil, ErrUnauthorized
	}
	var resp auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, auth.RefreshRequest{RefreshToken: current.RefreshToken}, &resp); err != nil {
		return nil, err
	}
	c.SetSession(&resp)
	return &resp, nil
}

// Logout ends the session on the server and forgets it locally, even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	current := c.Session()
	if current == nil {
		return nil
	}
	c.SetSession(nil)
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, auth.RefreshRequest{RefreshToken: current.RefreshToken}, nil)
}

// CurrentPrincipal asks the server who the stored token belongs to.
func (c *Client) CurrentPrincipal(ctx context.Context) (*auth.Principal, error) {
	if c.accessToken() == "" {
		return nil, ErrUnauthorized
	}
	var p auth.Principal
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) RequestRecoveryCode(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/recovery/request", nil, recovery.RequestCodeRequest{Email: email}, nil)
}

func (c *Client) VerifyRecoveryCode(ctx context.Context, email, code string) (*recovery.VerifyResponse, error) {
	var resp recovery.VerifyResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/recovery/verify", nil, recovery.VerifyRequest{Email: email, Code: code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetPassword(ctx context.Context, recoveryToken, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/recovery/password", nil, recovery.ResetRequest{RecoveryToken: recoveryToken, Password: password}, nil)
}
