package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	authconfig "github.com/smallbiznis/hushbox/internal/auth/config"
	"github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/clock"
	obstracing "github.com/smallbiznis/hushbox/internal/observability/tracing"
	"github.com/smallbiznis/hushbox/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	stateSize           = 32
	httpTimeout         = 10 * time.Second
	maxBodySize         = 1 << 20
	maxUsernameAttempts = 20
)

var nonUsernameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Service bridges Google sign-in into local accounts and sessions.
type Service interface {
	Enabled() bool
	BuildAuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchIdentity(ctx context.Context, accessToken string) (domain.Identity, error)
	CompleteAuth(ctx context.Context, identity domain.Identity) (*domain.AuthResult, error)
}

// SessionStarter issues tokens for an authenticated user.
type SessionStarter interface {
	StartSession(ctx context.Context, user *domain.User) (*domain.AuthResult, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   authconfig.GoogleConfig
	Repo     domain.Repository
	Sessions SessionStarter
	GenID    *snowflake.Node
	Clock    clock.Clock
}

type service struct {
	log        *zap.Logger
	cfg        authconfig.GoogleConfig
	repo       domain.Repository
	sessions   SessionStarter
	genID      *snowflake.Node
	clock      clock.Clock
	httpClient *http.Client
}

func NewService(p Params) Service {
	return &service{
		log:        p.Log.Named("auth.oauth"),
		cfg:        p.Config,
		repo:       p.Repo,
		sessions:   p.Sessions,
		genID:      p.GenID,
		clock:      p.Clock,
		httpClient: obstracing.WrapHTTPClient(&http.Client{Timeout: httpTimeout}),
	}
}

func (s *service) Enabled() bool {
	return s.cfg.Enabled()
}

func (s *service) BuildAuthorizationURL(state string) string {
	query := url.Values{}
	query.Set("client_id", s.cfg.ClientID)
	query.Set("redirect_uri", s.cfg.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", "email profile")
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")
	if state != "" {
		query.Set("state", state)
	}
	return s.cfg.AuthURL + "?" + query.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IDToken     string `json:"id_token"`
}

// ExchangeCode trades an authorization code for a provider access token.
func (s *service) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", s.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := s.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return "", ErrExchangeFailed
	}
	return token.AccessToken, nil
}

// FetchIdentity reads the signed-in user's profile.
func (s *service) FetchIdentity(ctx context.Context, accessToken string) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.UserInfoURL, nil)
	if err != nil {
		return domain.Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	body, err := s.do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrIdentityFailed, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Identity{}, ErrIdentityFailed
	}

	return domain.Identity{
		ID:      firstClaim(payload, "id", "sub"),
		Email:   firstClaim(payload, "email"),
		Name:    firstClaim(payload, "name"),
		Picture: firstClaim(payload, "picture"),
	}, nil
}

var errStatus = errors.New("unexpected status")

func (s *service) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w %d", errStatus, resp.StatusCode)
	}
	return body, nil
}

// CompleteAuth links the identity to an account, creating one on first sign-in,
// and starts a session for it.
func (s *service) CompleteAuth(ctx context.Context, identity domain.Identity) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	googleID := strings.TrimSpace(identity.ID)
	if email == "" || googleID == "" {
		return nil, domain.ErrMissingRequiredFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.linkGoogleID(ctx, user, googleID); err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.createUser(ctx, email, googleID, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	return s.sessions.StartSession(ctx, user)
}

func (s *service) linkGoogleID(ctx context.Context, user *domain.User, googleID string) error {
	if user.GoogleID != nil && *user.GoogleID != "" {
		return nil
	}
	err := s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"google_id":  googleID,
		"updated_at": s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("link google account: %w", err)
	}
	user.GoogleID = &googleID
	s.log.Info("linked google account", zap.String("user_id", user.ID.String()))
	return nil
}

// createUser derives the username from the email as the provider sent it, so case survives.
func (s *service) createUser(ctx context.Context, email, googleID string, identity domain.Identity) (*domain.User, error) {
	username, err := s.availableUsername(ctx, baseUsername(strings.TrimSpace(identity.Email)))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:        s.genID.Generate(),
		Email:     email,
		Username:  username,
		FullName:  optional(identity.Name),
		AvatarURL: optional(identity.Picture),
		GoogleID:  &googleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		// A concurrent sign-in for the same email won the insert.
		existing, findErr := s.repo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return existing, nil
	}

	s.log.Info("user created from google sign-in", zap.String("user_id", user.ID.String()))
	return user, nil
}

// availableUsername returns base, or base with the first free numeric suffix.
func (s *service) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i <= maxUsernameAttempts+1; i++ {
		_, err := s.repo.FindByUsername(ctx, candidate)
		if errors.Is(err, domain.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("find user by username: %w", err)
		}
		candidate = base + strconv.Itoa(i)
	}
	return base + "_" + strings.ToLower(ulid.Make().String()[20:]), nil
}

func baseUsername(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	name := nonUsernameChars.ReplaceAllString(local, "")
	if name == "" {
		return "user"
	}
	return name
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func firstClaim(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := payload[key]; ok {
			if str := claimToString(value); str != "" {
				return str
			}
		}
	}
	return ""
}

func claimToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	buf := make([]byte, stateSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
