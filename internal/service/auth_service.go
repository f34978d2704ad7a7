package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"tallergo/internal/database"
	"tallergo/internal/domain"
	"tallergo/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthService checks operator credentials and manages session tokens.
type AuthService struct {
	repo     domain.Repository
	sessions domain.SessionRepository
	logger   zerolog.Logger
}

// Login attempts allowed per client before the throttle kicks in. The
// counter lives in the session store so all instances share it.
const (
	loginAttemptLimit  = 5
	loginAttemptWindow = time.Minute
)

func NewAuthService(repo domain.Repository, sessions domain.SessionRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// HashPassword returns the hex-encoded SHA-256 digest stored for users.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Login verifies the credentials and opens a session. Every failure maps
// to the same ErrCredentials so callers cannot probe for usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrCredentials
	}

	hash := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(user.PasswordHash)) != 1 {
		s.logger.Warn().Str("username", username).Msg("failed login attempt")
		return nil, ErrCredentials
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", username).Msg("login")
	return session, nil
}

// ThrottleLogin counts a login attempt for the client and reports whether
// it is still within the allowance. Errors fail open so a broken counter
// cannot lock operators out.
func (s *AuthService) ThrottleLogin(ctx context.Context, client string) bool {
	allowed, err := s.sessions.CheckRateLimit(ctx, "login:"+client, loginAttemptLimit, loginAttemptWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login throttle check failed")
		return true
	}
	if !allowed {
		s.logger.Warn().Str("client", client).Msg("login throttled")
	}
	return allowed
}

// Authenticate resolves a token to its session, or nil when the token is
// unknown or expired. The account is re-checked on every call: disabling
// an operator revokes their live sessions.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil || session == nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			_ = s.sessions.DeleteSession(ctx, token)
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, nil
	}
	return session, nil
}

// Logout drops the session. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}
