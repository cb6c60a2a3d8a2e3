// ABOUTME: Authentication endpoints: login, signup, logout
// ABOUTME: Login and signup are preceded by a CSRF fetch in the session store

package api

import (
	"context"
	"fmt"
	"net/http"
)

// credentials is the JSON body for POST /api/login and POST /api/signup.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the JSON response from POST /api/login.
type loginResponse struct {
	User LoginUser `json:"user"`
}

// Login authenticates with the backend. The session cookie lands in the
// cookie jar; the returned user carries identity and role for the caller.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginUser, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp.User, nil
}

// Signup registers a new account. Registration does not establish a session;
// callers log in afterwards with the same credentials.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	if err := c.do(ctx, http.MethodPost, "/api/signup", credentials{Username: username, Password: password}, nil); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
