package api

import (
	"context"
	"net/http"

	"newsclient/internal/domain/entity"
)

const (
	loginPath          = "/accounts/login/"
	signupPath         = "/accounts/signup/"
	logoutPath         = "/accounts/logout/"
	statusPath         = "/accounts/status/"
	forgotPasswordPath = "/accounts/forgot-password/"
	resetPasswordPath  = "/accounts/reset-password/"
	changePasswordPath = "/accounts/change-password/"
	deleteAccountPath  = "/accounts/delete/"
)

// Login opens a session. The session and CSRF cookies land in the client's jar.
// The returned user is nil when the server does not echo one.
func (c *Client) Login(ctx context.Context, creds entity.Credentials) (*entity.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodPost, loginPath, nil, creds, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Signup registers an account. The server may also open a session.
func (c *Client) Signup(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodPost, signupPath, nil, reg, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout closes the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, logoutPath, nil, nil, nil)
}

// Status reports whether the jar holds an authenticated session.
func (c *Client) Status(ctx context.Context) (entity.AuthStatus, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, statusPath, nil, nil, &resp); err != nil {
		return entity.AuthStatus{}, err
	}
	status := entity.AuthStatus{Authenticated: resp.IsAuthenticated}
	if resp.IsAuthenticated {
		status.User = resp.User
	}
	return status, nil
}

// ForgotPassword asks the server to send a reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, forgotPasswordPath, nil, emailRequest{Email: email}, nil)
}

// ResetPassword sets a new password using the token from the reset email.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, resetPasswordPath, nil, resetPasswordRequest{Token: token, Password: password}, nil)
}

// ChangePassword changes the password of the signed-in user.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, changePasswordPath, nil, changePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}

// DeleteAccount permanently deletes the signed-in user's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, deleteAccountPath, nil, nil, nil)
}
