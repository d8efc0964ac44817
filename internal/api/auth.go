package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/model"
)

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type userResponse struct {
	User *model.User `json:"user"`
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	return c.authenticate(ctx, "login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, name, email, password string) (AuthResponse, error) {
	return c.authenticate(ctx, "signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, action string, body map[string]string) (AuthResponse, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, c.endpoint("auth", action), body)
	if err != nil {
		return AuthResponse{}, err
	}

	var resp AuthResponse
	if err := c.do(req, &resp); err != nil {
		return AuthResponse{}, fmt.Errorf("%s: %w", action, err)
	}
	if resp.Token == "" {
		return AuthResponse{}, fmt.Errorf("%s: %w: missing token", action, common.ErrMalformedPayload)
	}
	return resp, nil
}

// Me fetches the profile for the current token.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, c.endpoint("auth", "me"), nil)
	if err != nil {
		return model.User{}, err
	}
	return c.decodeUser(req, "fetch user")
}

// UpdateProfile sends a partial update and returns the canonical profile.
func (c *Client) UpdateProfile(ctx context.Context, patch model.ProfilePatch) (model.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPut, c.endpoint("auth", "profile"), patch)
	if err != nil {
		return model.User{}, err
	}
	return c.decodeUser(req, "update profile")
}

func (c *Client) decodeUser(req *http.Request, op string) (model.User, error) {
	var resp userResponse
	if err := c.do(req, &resp); err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if resp.User == nil {
		return model.User{}, fmt.Errorf("%s: %w: missing user", op, common.ErrMalformedPayload)
	}
	return *resp.User, nil
}
