package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByToken(ctx context.Context, refreshToken string, userID snowflake.ID) (*Session, error)
	DeleteByToken(ctx context.Context, refreshToken string) error
	DeleteAllForUser(ctx context.Context, userID snowflake.ID) error
	DeleteAllForUserExcept(ctx context.Context, userID snowflake.ID, keepToken string) error
}

// MessagePurger removes every message owned by a user. Account deletion calls it
// before removing sessions and the user row.
type MessagePurger interface {
	PurgeForUser(ctx context.Context, userID snowflake.ID) (int64, error)
}
