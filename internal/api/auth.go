package api

import (
	"context"
	"net/http"

	"cafeteria/internal/models"
)

// Register creates the user or, for a known email, resends the code
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/register", body: req, public: true}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyCode exchanges the emailed code for a bearer token. On success the
// token is attached to subsequent calls.
func (c *Client) VerifyCode(ctx context.Context, email, code string) (*models.VerifyCodeResponse, error) {
	var resp models.VerifyCodeResponse
	req := request{
		method: http.MethodPost,
		path:   "/verify-code",
		body:   models.VerifyCodeRequest{Email: email, Code: code},
		public: true,
	}
	if err := c.doJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return &resp, nil
}

// Me returns the current user's profile
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/users/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
