package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/auth/password"
	"github.com/smallbiznis/hushbox/internal/auth/token"
	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/smallbiznis/hushbox/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Repo        domain.Repository
	SessionRepo domain.SessionRepository
	GenID       *snowflake.Node
	Hasher      *password.Hasher
	Tokens      *token.Service
	Clock       clock.Clock
	Purger      domain.MessagePurger
	Profiles    domain.ProfileInvalidator `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	genID       *snowflake.Node
	hasher      *password.Hasher
	tokens      *token.Service
	clock       clock.Clock
	purger      domain.MessagePurger
	profiles    domain.ProfileInvalidator
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("auth.service"),
		repo:        p.Repo,
		sessionRepo: p.SessionRepo,
		genID:       p.GenID,
		hasher:      p.Hasher,
		tokens:      p.Tokens,
		clock:       p.Clock,
		purger:      p.Purger,
		profiles:    p.Profiles,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Username:     username,
		PasswordHash: &hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, s.duplicateCause(ctx, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.StartSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.PasswordHash == nil || !s.hasher.Verify(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.StartSession(ctx, user)
}

// StartSession issues a token pair for user and persists the refresh grant.
func (s *Service) StartSession(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	access, err := s.tokens.IssueAccess(token.Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	session := &domain.Session{
		ID:           s.genID.Generate(),
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    s.tokens.RefreshExpiry(),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &domain.AuthResult{
		User:         user.View(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.RefreshResult, error) {
	claims, ok := s.tokens.VerifyRefresh(refreshToken)
	if !ok {
		return nil, domain.ErrInvalidRefreshToken
	}

	session, err := s.sessionRepo.FindByToken(ctx, refreshToken, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	if !session.ExpiresAt.After(s.clock.Now()) {
		if err := s.sessionRepo.DeleteByToken(ctx, refreshToken); err != nil {
			s.log.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, domain.ErrRefreshTokenExpired
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	access, err := s.tokens.IssueAccess(token.Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &domain.RefreshResult{User: user.View(), AccessToken: access}, nil
}

func (s *Service) VerifyAccessToken(ctx context.Context, accessToken string) (*domain.UserView, error) {
	claims, ok := s.tokens.VerifyAccess(accessToken)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	view := user.View()
	return &view, nil
}

func (s *Service) UpdateUsername(ctx context.Context, userID snowflake.ID, newUsername string) (*domain.UserView, error) {
	newUsername = strings.TrimSpace(newUsername)

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.Username == newUsername {
		view := user.View()
		return &view, nil
	}

	if err := s.ensureUsernameFree(ctx, newUsername, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err = s.repo.UpdateFields(ctx, userID, map[string]any{
		"username":   newUsername,
		"updated_at": now,
	})
	if err != nil {
		switch {
		case db.IsDuplicateKeyErr(err):
			return nil, domain.ErrDuplicateUsername
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update username: %w", err)
	}

	s.invalidateProfile(user.Username)
	s.invalidateProfile(newUsername)

	user.Username = newUsername
	user.UpdatedAt = now
	view := user.View()
	return &view, nil
}

// ChangePassword replaces the password and revokes every other session of the user.
func (s *Service) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if user.PasswordHash == nil || !s.hasher.Verify(req.CurrentPassword, *user.PasswordHash) {
		return domain.ErrIncorrectPassword
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"password_hash": hashed,
		"updated_at":    s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.sessionRepo.DeleteAllForUserExcept(ctx, user.ID, req.KeepRefreshToken); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.log.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// DeleteAccount removes messages, then sessions, then the user row.
func (s *Service) DeleteAccount(ctx context.Context, userID snowflake.ID) error {
	var username string
	user, err := s.repo.FindByID(ctx, userID)
	switch {
	case err == nil:
		username = user.Username
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("find user: %w", err)
	}

	purged, err := s.purger.PurgeForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := s.sessionRepo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidateProfile(username)

	s.log.Info("account deleted",
		zap.String("user_id", userID.String()),
		zap.Int64("messages_deleted", purged),
	)
	return nil
}

func (s *Service) PublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *Service) invalidateProfile(username string) {
	if s.profiles != nil && username != "" {
		s.profiles.Invalidate(username)
	}
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrDuplicateEmail
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("find user by email: %w", err)
	}
}

// ensureUsernameFree treats a username held by owner as free.
func (s *Service) ensureUsernameFree(ctx context.Context, username string, owner snowflake.ID) error {
	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if owner != 0 && existing.ID == owner {
			return nil
		}
		return domain.ErrDuplicateUsername
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("find user by username: %w", err)
	}
}

// duplicateCause resolves which unique column a racing insert collided on.
func (s *Service) duplicateCause(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateUsername
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
