package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appauth "github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// AuthService handles registration, sign-in and the signed-in profile
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	jwtService *auth.JWTService
	rules      *validation.Rules
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	jwtService *auth.JWTService,
	rules *validation.Rules,
	clk clock.Clock,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtService: jwtService,
		rules:      rules,
		clock:      clk,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active borrower account
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if err := validation.CheckName(req.Name); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.rules.CheckEmail(email); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := validation.CheckNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	exists, err := s.users.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("User registered")
	return user, nil
}

// Login checks credentials and opens a server-side session
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, userAgent, ipAddress string) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	issued, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		ID:        issued.SessionID,
		UserID:    user.ID,
		ExpiresAt: issued.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("sessionID", session.ID).Msg("User signed in")
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: issued.Token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(issued.ExpiresAt.Sub(s.clock.Now()).Seconds()),
			ExpiresAt:   issued.ExpiresAt,
		},
		User:      user,
		Dashboard: appauth.NewAuthContext(user, session.ID).DashboardPath(),
	}, nil
}

// Logout revokes the session behind the caller's token
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("sessionID", sessionID).Msg("Session revoked")
	return nil
}

// Authenticate turns a bearer token into the request's caller. The token
// must verify, its session must be open, and its user must be active.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*appauth.AuthContext, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	session, err := s.sessions.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.UserID || !session.ValidAt(s.clock.Now()) {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	return appauth.NewAuthContext(user, session.ID), nil
}

// GetProfile returns the signed-in user
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes the caller's name and email. Borrowers must keep an
// institutional address; staff accounts may use any address.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *appauth.AuthContext, req *dto.UpdateProfileRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if err := validation.CheckName(req.Name); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if actor.Role == models.RoleUser {
		if err := s.rules.CheckEmail(email); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	exists, err := s.users.EmailExists(ctx, email, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	if err := s.users.UpdateProfile(ctx, actor.UserID, strings.TrimSpace(req.Name), email); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, actor.UserID)
}

// ChangePassword replaces the caller's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewValidationError("Current password is incorrect")
	}
	if err := validation.CheckNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}

// PruneSessions deletes sessions that can no longer authenticate
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.clock.Now())
}
