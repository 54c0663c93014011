package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hushbox/internal/message/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, message *domain.Message) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO messages (id, user_id, content, is_anonymous, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		message.ID,
		message.UserID,
		message.Content,
		message.IsAnonymous,
		message.Status,
		message.CreatedAt,
		message.UpdatedAt,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Message, error) {
	messages := []domain.Message{}
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, content, is_anonymous, status, created_at, updated_at
		 FROM messages WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	).Scan(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Message, error) {
	var message domain.Message
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, content, is_anonymous, status, created_at, updated_at
		 FROM messages WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Scan(&message).Error
	if err != nil {
		return nil, err
	}
	if message.ID == 0 {
		return nil, nil
	}
	return &message, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, status domain.Status, updatedAt time.Time) (int64, error) {
	tx := db.WithContext(ctx).Exec(
		`UPDATE messages SET status = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		status,
		updatedAt,
		userID,
		id,
	)
	return tx.RowsAffected, tx.Error
}

func (r *repo) DeleteByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM messages WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Error
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	tx := db.WithContext(ctx).Exec(`DELETE FROM messages WHERE user_id = ?`, userID)
	return tx.RowsAffected, tx.Error
}
