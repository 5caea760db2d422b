// Package account drives login, signup and password management against the
// accounts API. Authentication itself happens on the server.
package account

// Operations reported in AccountError and metrics.
const (
	OpLogin          = "login"
	OpSignup         = "signup"
	OpLogout         = "logout"
	OpStatus         = "status"
	OpForgotPassword = "forgot_password"
	OpResetPassword  = "reset_password"
	OpChangePassword = "change_password"
	OpDeleteAccount  = "delete_account"
)

// fallbackMessages are shown when the server did not explain a failure.
var fallbackMessages = map[string]string{
	OpLogin:          "Login failed",
	OpSignup:         "Signup failed",
	OpLogout:         "Logout failed",
	OpStatus:         "Auth check failed",
	OpForgotPassword: "Failed to send reset email",
	OpResetPassword:  "Failed to reset password",
	OpChangePassword: "Failed to change password",
	OpDeleteAccount:  "Failed to delete account",
}

// MsgPasswordMismatch is returned by ChangePassword before any request when
// the confirmation does not match.
const MsgPasswordMismatch = "Passwords do not match"

// AccountError is a failed account operation with a user-facing message.
type AccountError struct {
	Op      string
	Message string
	Err     error
}

func (e *AccountError) Error() string {
	return e.Message
}

func (e *AccountError) Unwrap() error {
	return e.Err
}
