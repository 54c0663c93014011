package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, message *Message) error
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Message, error)
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Message, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, status Status, updatedAt time.Time) (int64, error)
	DeleteByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
	DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
