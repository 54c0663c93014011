package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
)

// MaxContentLength is the longest message body accepted, in characters.
const MaxContentLength = 500

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	default:
		return false
	}
}

type Message struct {
	ID          snowflake.ID     `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID     `gorm:"column:user_id;not null;index" json:"user_id"`
	User        *authdomain.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool             `gorm:"column:is_anonymous;not null;default:true" json:"is_anonymous"`
	Status      Status           `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Message) TableName() string { return "messages" }
