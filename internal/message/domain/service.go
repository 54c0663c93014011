package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
)

type SendRequest struct {
	Username string
	Content  string
}

type Service interface {
	List(ctx context.Context, userID snowflake.ID) ([]Message, error)
	UpdateStatus(ctx context.Context, userID, id snowflake.ID, status Status) (*Message, error)
	Delete(ctx context.Context, userID, id snowflake.ID) error
	Send(ctx context.Context, req SendRequest) (*Message, error)
	PurgeForUser(ctx context.Context, userID snowflake.ID) (int64, error)
}

// RecipientDirectory resolves a public username to its owner.
type RecipientDirectory interface {
	FindByUsername(ctx context.Context, username string) (*authdomain.User, error)
}
