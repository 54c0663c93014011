package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error)
	VerifyAccessToken(ctx context.Context, accessToken string) (*UserView, error)
	UpdateUsername(ctx context.Context, userID snowflake.ID, newUsername string) (*UserView, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID snowflake.ID) error
	StartSession(ctx context.Context, user *User) (*AuthResult, error)
	PublicProfile(ctx context.Context, username string) (*PublicProfile, error)
}

type RegisterRequest struct {
	Email    string
	Password string
	Username string
}

type LoginRequest struct {
	Email    string
	Password string
}

type ChangePasswordRequest struct {
	UserID           snowflake.ID
	CurrentPassword  string
	NewPassword      string
	KeepRefreshToken string
}
