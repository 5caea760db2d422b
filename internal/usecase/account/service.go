package account

import (
	"context"
	"log/slog"
	"strings"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/metrics"
)

// API is the accounts part of the remote API.
type API interface {
	Login(ctx context.Context, creds entity.Credentials) (*entity.User, error)
	Signup(ctx context.Context, reg entity.Registration) (*entity.User, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (entity.AuthStatus, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	ChangePassword(ctx context.Context, current, next string) error
	DeleteAccount(ctx context.Context) error
}

// Session is reloaded after operations that change who is logged in.
type Session interface {
	Bootstrap(ctx context.Context) error
	Reset()
}

// Service implements the account flows.
type Service struct {
	api     API
	session Session
}

// NewService creates a Service.
func NewService(api API, session Session) *Service {
	return &Service{api: api, session: session}
}

// Login authenticates with the email address as username and reloads the session.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, error) {
	creds := entity.Credentials{Username: strings.TrimSpace(email), Password: password}
	if err := entity.ValidateCredentials(creds); err != nil {
		return nil, rejected(OpLogin, err)
	}
	user, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, s.fail(OpLogin, err)
	}
	metrics.RecordAccountOperation(OpLogin, true)
	s.reload(ctx)
	return user, nil
}

// Signup creates an account, which also logs it in, and reloads the session.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*entity.User, error) {
	user, err := s.api.Signup(ctx, entity.Registration{
		Username: strings.TrimSpace(email),
		Password: password,
		Name:     strings.TrimSpace(name),
	})
	if err != nil {
		return nil, s.fail(OpSignup, err)
	}
	metrics.RecordAccountOperation(OpSignup, true)
	s.reload(ctx)
	return user, nil
}

// Logout ends the server session and clears the local one.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return s.fail(OpLogout, err)
	}
	metrics.RecordAccountOperation(OpLogout, true)
	s.session.Reset()
	s.reload(ctx)
	return nil
}

// Status asks the server whether this client is logged in.
func (s *Service) Status(ctx context.Context) (entity.AuthStatus, error) {
	status, err := s.api.Status(ctx)
	if err != nil {
		return entity.AuthStatus{}, s.fail(OpStatus, err)
	}
	metrics.RecordAccountOperation(OpStatus, true)
	return status, nil
}

// ForgotPassword requests a reset email for email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := entity.ValidateEmail(email); err != nil {
		return rejected(OpForgotPassword, err)
	}
	if err := s.api.ForgotPassword(ctx, email); err != nil {
		return s.fail(OpForgotPassword, err)
	}
	metrics.RecordAccountOperation(OpForgotPassword, true)
	return nil
}

// ResetPassword sets a new password using the token from the reset email.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if err := s.api.ResetPassword(ctx, strings.TrimSpace(token), password); err != nil {
		return s.fail(OpResetPassword, err)
	}
	metrics.RecordAccountOperation(OpResetPassword, true)
	return nil
}

// ChangePassword changes the logged-in user's password. A confirmation that
// differs from next is rejected without contacting the server.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if next != confirm {
		metrics.RecordAccountOperation(OpChangePassword, false)
		return &AccountError{Op: OpChangePassword, Message: MsgPasswordMismatch}
	}
	if err := s.api.ChangePassword(ctx, current, next); err != nil {
		return s.fail(OpChangePassword, err)
	}
	metrics.RecordAccountOperation(OpChangePassword, true)
	return nil
}

// DeleteAccount removes the logged-in account and clears the local session.
func (s *Service) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteAccount(ctx); err != nil {
		return s.fail(OpDeleteAccount, err)
	}
	metrics.RecordAccountOperation(OpDeleteAccount, true)
	s.session.Reset()
	s.reload(ctx)
	return nil
}

func (s *Service) fail(op string, err error) error {
	metrics.RecordAccountOperation(op, false)
	slog.Warn("account operation failed",
		slog.String("operation", op),
		slog.Any("error", err))
	return &AccountError{Op: op, Message: entity.MessageOrFallback(err, fallbackMessages[op]), Err: err}
}

// rejected wraps input that failed local validation; no request was made.
func rejected(op string, err error) error {
	return &AccountError{Op: op, Message: entity.MessageOrFallback(err, fallbackMessages[op]), Err: err}
}

// reload re-reads the session after a change of identity.
func (s *Service) reload(ctx context.Context) {
	if err := s.session.Bootstrap(ctx); err != nil {
		slog.Warn("session reload failed", slog.Any("error", err))
	}
}
