package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// CredentialStore exposes the user lookups required by the auth service.
type CredentialStore interface {
	AccountByEmail(email string) (Account, bool)
	UserByID(id string) (User, bool)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService issues and validates opaque session tokens for directory users.
// Sessions live in memory only and end when the process exits.
type AuthService struct {
	credentials    CredentialStore
	verifyPassword PasswordVerifier
	now            func() time.Time
	logger         *slog.Logger

	mu       sync.RWMutex
	sessions map[string]string
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, verify PasswordVerifier, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(credentials, verify, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, verify PasswordVerifier, now func() time.Time, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		credentials:    credentials,
		verifyPassword: verify,
		now:            now,
		logger:         defaultLogger(logger),
		sessions:       make(map[string]string),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login checks credentials and issues a new session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	email = strings.TrimSpace(email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "authentication failed", err)
			return
		}
		logger.With("user_id", session.User.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	account, ok := s.credentials.AccountByEmail(email)
	if !ok {
		err = ErrInvalidCredentials
		return
	}
	if s.verifyPassword(account.PasswordHash, password) != nil {
		err = ErrInvalidCredentials
		return
	}

	token := fmt.Sprintf("fake-jwt-token-%s-%d", account.User.ID, s.now().UnixMilli())

	s.mu.Lock()
	s.sessions[token] = account.User.ID
	s.mu.Unlock()

	session = Session{Token: token, User: account.User}
	return
}

// Logout forgets token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	token = strings.TrimSpace(token)
	s.mu.Lock()
	userID, known := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	s.loggerWith(ctx, "Logout", "known", known, "user_id", userID).InfoContext(ctx, "session ended")
	return nil
}

// Validate restores the session behind token.
func (s *AuthService) Validate(ctx context.Context, token string) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	token = strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "Validate", "token_provided", token != "")
	defer func() {
		if err != nil {
			logger.DebugContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", user.ID).DebugContext(ctx, "session validated")
	}()

	if token == "" {
		err = ErrUnauthorized
		return
	}

	s.mu.RLock()
	userID, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		err = ErrUnauthorized
		return
	}

	if user, ok = s.credentials.UserByID(userID); !ok {
		err = ErrUnauthorized
		return
	}
	return user, nil
}
