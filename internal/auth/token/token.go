package token

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/smallbiznis/hushbox/internal/config"
)

const (
	AccessTTL  = 7 * 24 * time.Hour
	RefreshTTL = 30 * 24 * time.Hour

	refreshType = "refresh"
)

var ErrEmptySecret = errors.New("token signing secret is empty")

// Claims identifies the bearer of an access token.
type Claims struct {
	UserID   snowflake.ID
	Email    string
	Username string
}

// RefreshClaims identifies the bearer of a refresh token.
type RefreshClaims struct {
	UserID snowflake.ID
	ID     string
}

type accessClaims struct {
	UserID   snowflake.ID `json:"userId"`
	Email    string       `json:"email"`
	Username string       `json:"username"`
	Type     string       `json:"type,omitempty"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID snowflake.ID `json:"userId"`
	Type   string       `json:"type"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 access and refresh tokens.
type Service struct {
	secret []byte
	clock  clock.Clock
	parser *jwt.Parser
}

func New(secret string, clk clock.Clock) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		secret: []byte(secret),
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(clk.Now),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// NewFromConfig builds the Service from the application secret.
func NewFromConfig(cfg config.Config, clk clock.Clock) (*Service, error) {
	return New(cfg.AuthJWTSecret, clk)
}

func (s *Service) IssueAccess(c Claims) (string, error) {
	now := s.clock.Now()
	claims := accessClaims{
		UserID:   c.UserID,
		Email:    c.Email,
		Username: c.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyAccess validates an access token. Refresh tokens are never accepted here.
func (s *Service) VerifyAccess(raw string) (Claims, bool) {
	if raw == "" {
		return Claims{}, false
	}
	var claims accessClaims
	if _, err := s.parser.ParseWithClaims(raw, &claims, s.keyFunc); err != nil {
		return Claims{}, false
	}
	if claims.Type != "" || claims.UserID == 0 {
		return Claims{}, false
	}
	return Claims{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
	}, true
}

func (s *Service) IssueRefresh(userID snowflake.ID) (string, error) {
	now := s.clock.Now()
	claims := refreshClaims{
		UserID: userID,
		Type:   refreshType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) VerifyRefresh(raw string) (RefreshClaims, bool) {
	if raw == "" {
		return RefreshClaims{}, false
	}
	var claims refreshClaims
	if _, err := s.parser.ParseWithClaims(raw, &claims, s.keyFunc); err != nil {
		return RefreshClaims{}, false
	}
	if claims.Type != refreshType || claims.UserID == 0 {
		return RefreshClaims{}, false
	}
	return RefreshClaims{UserID: claims.UserID, ID: claims.ID}, true
}

// RefreshExpiry is the expiry a refresh token issued now would carry.
func (s *Service) RefreshExpiry() time.Time {
	return s.clock.Now().Add(RefreshTTL)
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.secret, nil
}
