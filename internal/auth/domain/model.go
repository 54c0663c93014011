// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents a registered account.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Email        string       `gorm:"column:email;type:text;not null;uniqueIndex"`
	Username     string       `gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash *string      `gorm:"column:password_hash;type:text"`
	FullName     *string      `gorm:"column:full_name;type:text"`
	AvatarURL    *string      `gorm:"column:avatar_url;type:text"`
	GoogleID     *string      `gorm:"column:google_id;type:text"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session is one refresh-token grant. It is valid while the row exists and has not expired.
type Session struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	UserID       snowflake.ID `gorm:"column:user_id;not null;index"`
	User         *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RefreshToken string       `gorm:"column:refresh_token;type:text;not null;index"`
	ExpiresAt    time.Time    `gorm:"column:expires_at;not null"`
	CreatedAt    time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// UserMetadata mirrors profile fields for clients that read them from user_metadata.
type UserMetadata struct {
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// UserView is the client-facing projection of a User. It never carries the password hash.
type UserView struct {
	ID           snowflake.ID `json:"id"`
	Email        string       `json:"email"`
	Username     string       `json:"username"`
	FullName     *string      `json:"full_name"`
	AvatarURL    *string      `json:"avatar_url"`
	CreatedAt    time.Time    `json:"created_at"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// View projects u into its client-facing form.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UserMetadata: UserMetadata{
			Username:  u.Username,
			FullName:  u.FullName,
			AvatarURL: u.AvatarURL,
		},
	}
}

// PublicProfile is what anonymous visitors see on a user's link.
type PublicProfile struct {
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}

// AuthResult is returned by every operation that starts a session.
type AuthResult struct {
	User         UserView
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	User        UserView
	AccessToken string
}

// Identity is the subset of an external identity provider's profile used for sign-in.
type Identity struct {
	ID      string
	Email   string
	Name    string
	Picture string
}
