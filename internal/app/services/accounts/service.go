// Package accounts handles registration, login, and token refresh.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/user"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	"github.com/jakehorton1228-droid/habit-tracker/internal/auth"
	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

const minPasswordLength = 8

// Service manages user accounts and session tokens.
type Service struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	log    *logger.Logger
}

// New constructs an account service.
func New(store storage.UserStore, tokens *auth.TokenManager, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{store: store, tokens: tokens, log: log}
}

// Register creates an account. Username is required and unique; the password
// must be at least eight characters. Email is optional.
func (s *Service) Register(ctx context.Context, username, email, password string) (user.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	v := apperrors.NewValidation()
	if username == "" {
		v.Add("username", "username is required")
	}
	if len(password) < minPasswordLength {
		v.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if err := v.OrNil(); err != nil {
		return user.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			return user.User{}, apperrors.Validationf("username", "username already exists")
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// Login verifies the credentials and mints a token pair. Unknown usernames
// and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return auth.TokenPair{}, apperrors.ErrInvalidCredentials
		}
		return auth.TokenPair{}, fmt.Errorf("look up user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return auth.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(u.ID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	s.log.WithField("user_id", u.ID).Info("user logged in")
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TypeRefresh)
	if err != nil {
		return "", err
	}
	// The account must still exist; tokens are stateless otherwise.
	if _, err := s.store.GetUser(ctx, claims.UserID); err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.ErrTokenInvalid
		}
		return "", fmt.Errorf("look up user: %w", err)
	}
	return s.tokens.IssueAccess(claims.UserID)
}

// CurrentUser returns the authenticated user's profile.
func (s *Service) CurrentUser(ctx context.Context, userID string) (user.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return user.User{}, apperrors.NotFound("user")
		}
		return user.User{}, fmt.Errorf("look up user: %w", err)
	}
	return u, nil
}
