package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/smallbiznis/hushbox/internal/message/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Recipients domain.RecipientDirectory
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	recipients domain.RecipientDirectory
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("message.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		recipients: p.Recipients,
	}
}

// List returns the user's messages, newest first.
func (s *Service) List(ctx context.Context, userID snowflake.ID) ([]domain.Message, error) {
	messages, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (s *Service) UpdateStatus(ctx context.Context, userID, id snowflake.ID, status domain.Status) (*domain.Message, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var updated *domain.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateStatus(ctx, tx, userID, id, status, s.clock.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrMessageNotFound
		}
		updated, err = s.repo.FindByID(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrMessageNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update message status: %w", err)
	}
	return updated, nil
}

// Delete removes one of the user's messages. Deleting a missing message succeeds.
func (s *Service) Delete(ctx context.Context, userID, id snowflake.ID) error {
	if err := s.repo.DeleteByID(ctx, s.db, userID, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// Send stores an anonymous message for the owner of req.Username.
func (s *Service) Send(ctx context.Context, req domain.SendRequest) (*domain.Message, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Content == "" {
		return nil, domain.ErrContentRequired
	}
	// The limit applies to the content as submitted; only the stored copy is trimmed.
	if utf8.RuneCountInString(req.Content) > domain.MaxContentLength {
		return nil, domain.ErrContentTooLong
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrContentRequired
	}

	recipient, err := s.recipients.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return nil, domain.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("find recipient: %w", err)
	}

	now := s.clock.Now()
	message := &domain.Message{
		ID:          s.genID.Generate(),
		UserID:      recipient.ID,
		Content:     content,
		IsAnonymous: true,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, message); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return message, nil
}

func (s *Service) PurgeForUser(ctx context.Context, userID snowflake.ID) (int64, error) {
	n, err := s.repo.DeleteByUser(ctx, s.db, userID)
	if err != nil {
		return 0, fmt.Errorf("purge messages: %w", err)
	}
	return n, nil
}
