package application

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

const (
	changePasswordPath = "/auth/change-password"

	// DefaultChangePasswordMessage is shown when the backend gives no reason.
	DefaultChangePasswordMessage = "Failed to change password"

	minPasswordLength = 6
)

// SessionState is either Anonymous or Authenticated.
type SessionState int

const (
	Anonymous SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// SessionService manages the login lifecycle. The session is Authenticated
// exactly when the credential store holds a token.
type SessionService struct {
	auth   driven.AuthAPI
	creds  *CredentialStore
	logger *slog.Logger
}

// NewSessionService creates a SessionService. A nil logger uses slog.Default.
func NewSessionService(auth driven.AuthAPI, creds *CredentialStore, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{auth: auth, creds: creds, logger: logger}
}

// State returns the current session state.
func (s *SessionService) State() SessionState {
	if s.IsAuthenticated() {
		return Authenticated
	}
	return Anonymous
}

// IsAuthenticated reports whether a token is held.
func (s *SessionService) IsAuthenticated() bool {
	_, ok := s.creds.Get()
	return ok
}

// Login exchanges creds for a token. On failure any previously held token
// is cleared and the backend error is returned unchanged.
func (s *SessionService) Login(ctx context.Context, creds model.Credentials) error {
	result, err := s.auth.Login(ctx, creds)
	if err == nil && result.Token == "" {
		err = &model.APIError{
			Kind:    model.KindServer,
			Method:  http.MethodPost,
			Path:    "/auth/login",
			Message: "login response carried no token",
		}
	}
	if err != nil {
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			s.logger.Error("clearing token after failed login", "error", clearErr)
		}
		s.logger.Warn("login failed", "email", creds.Email, "error", err)
		return err
	}

	if err := s.creds.Set(ctx, result.Token); err != nil {
		// The session is usable for this process even if it cannot be persisted.
		s.logger.Error("persisting token", "error", err)
	}
	s.logger.Info("logged in", "email", creds.Email)
	return nil
}

// Logout ends the session unconditionally. The returned error only reports
// a failure to remove the persisted token; the session is Anonymous either way.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.Error("removing persisted token", "error", err)
		return err
	}
	s.logger.Info("logged out")
	return nil
}

// HandleUnauthorized ends the session after the backend rejected the held
// token. It is registered as the dispatcher's unauthorized hook.
func (s *SessionService) HandleUnauthorized() {
	if !s.IsAuthenticated() {
		return
	}
	s.logger.Warn("token rejected by backend, logging out")
	if err := s.creds.Clear(context.Background()); err != nil {
		s.logger.Error("removing persisted token", "error", err)
	}
}

// ChangePassword changes the password of the logged-in user. The session
// state is never changed. Every failure is an *model.APIError whose Message
// is the backend's reason or DefaultChangePasswordMessage.
func (s *SessionService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := ValidateNewPassword(newPassword); err != nil {
		return err
	}

	err := s.auth.ChangePassword(ctx, currentPassword, newPassword)
	if err == nil {
		s.logger.Info("password changed")
		return nil
	}

	s.logger.Error("change password failed", "error", err)

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.WithMessage(DefaultChangePasswordMessage)
	}
	return &model.APIError{
		Kind:    model.KindServer,
		Method:  http.MethodPut,
		Path:    changePasswordPath,
		Message: DefaultChangePasswordMessage,
		Err:     err,
	}
}

// ValidateNewPassword applies the backend's password rules locally: at least
// six characters with a lowercase letter, an uppercase letter and a digit.
func ValidateNewPassword(password string) error {
	var msg string
	switch {
	case len(password) < minPasswordLength:
		msg = "New password must be at least 6 characters."
	case !strings.ContainsFunc(password, unicode.IsLower):
		msg = "Must have a lowercase letter."
	case !strings.ContainsFunc(password, unicode.IsUpper):
		msg = "Must have an uppercase letter."
	case !strings.ContainsFunc(password, unicode.IsDigit):
		msg = "Must have a number."
	default:
		return nil
	}
	return &model.APIError{
		Kind:    model.KindValidation,
		Method:  http.MethodPut,
		Path:    changePasswordPath,
		Message: msg,
	}
}
