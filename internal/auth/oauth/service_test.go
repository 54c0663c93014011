package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authconfig "github.com/smallbiznis/hushbox/internal/auth/config"
	"github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/auth/password"
	"github.com/smallbiznis/hushbox/internal/auth/repository"
	authservice "github.com/smallbiznis/hushbox/internal/auth/service"
	"github.com/smallbiznis/hushbox/internal/auth/token"
	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/smallbiznis/hushbox/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type noopPurger struct{}

func (noopPurger) PurgeForUser(context.Context, snowflake.ID) (int64, error) { return 0, nil }

type fixture struct {
	svc   Service
	auth  domain.Service
	users domain.Repository
}

func newFixture(t *testing.T, cfg authconfig.GoogleConfig) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	tokens, err := token.New("test-secret", clk)
	require.NoError(t, err)

	users, sessions := repository.New(conn)
	auth := authservice.New(authservice.Params{
		Log:         zap.NewNop(),
		Repo:        users,
		SessionRepo: sessions,
		GenID:       node,
		Hasher:      password.NewWithCost(bcrypt.MinCost),
		Tokens:      tokens,
		Clock:       clk,
		Purger:      noopPurger{},
	})

	svc := NewService(Params{
		Log:      zap.NewNop(),
		Config:   cfg,
		Repo:     users,
		Sessions: auth,
		GenID:    node,
		Clock:    clk,
	})
	return &fixture{svc: svc, auth: auth, users: users}
}

func testConfig(base string) authconfig.GoogleConfig {
	return authconfig.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/api/auth/google/callback",
		AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     base + "/token",
		UserInfoURL:  base + "/userinfo",
	}
}

func TestBuildAuthorizationURL(t *testing.T) {
	f := newFixture(t, testConfig("http://unused"))

	raw := f.svc.BuildAuthorizationURL("abc")
	require.Equal(t, raw, f.svc.BuildAuthorizationURL("abc"))

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", parsed.Host)
	require.Equal(t, "/o/oauth2/v2/auth", parsed.Path)

	q := parsed.Query()
	require.Equal(t, "client-id", q.Get("client_id"))
	require.Equal(t, "http://localhost:8080/api/auth/google/callback", q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "email profile", q.Get("scope"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.Equal(t, "abc", q.Get("state"))
}

func TestExchangeAndFetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			require.Equal(t, "the-code", r.PostForm.Get("code"))
			require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			require.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "google-at"})
		case "/userinfo":
			require.Equal(t, "Bearer google-at", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]string{
				"sub":     "g-123",
				"email":   "Alice@Example.com",
				"name":    "Alice",
				"picture": "https://example.com/a.png",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newFixture(t, testConfig(srv.URL))
	ctx := context.Background()

	at, err := f.svc.ExchangeCode(ctx, "the-code")
	require.NoError(t, err)
	require.Equal(t, "google-at", at)

	identity, err := f.svc.FetchIdentity(ctx, at)
	require.NoError(t, err)
	require.Equal(t, "g-123", identity.ID)
	require.Equal(t, "Alice", identity.Name)
}

func TestExchangeFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	f := newFixture(t, testConfig(srv.URL))
	_, err := f.svc.ExchangeCode(context.Background(), "bad")
	require.ErrorIs(t, err, ErrExchangeFailed)

	_, err = f.svc.FetchIdentity(context.Background(), "token")
	require.ErrorIs(t, err, ErrIdentityFailed)
}

func TestCompleteAuthCreatesUser(t *testing.T) {
	f := newFixture(t, testConfig("http://unused"))
	ctx := context.Background()

	res, err := f.svc.CompleteAuth(ctx, domain.Identity{
		ID: "g-1", Email: "Jane.Doe+x@Example.com", Name: "Jane Doe", Picture: "https://example.com/j.png",
	})
	require.NoError(t, err)
	require.Equal(t, "JaneDoex", res.User.Username)
	require.Equal(t, "jane.doe+x@example.com", res.User.Email)
	require.NotNil(t, res.User.FullName)
	require.Equal(t, "Jane Doe", *res.User.FullName)
	require.NotEmpty(t, res.RefreshToken)

	user, err := f.users.FindByEmail(ctx, "jane.doe+x@example.com")
	require.NoError(t, err)
	require.Nil(t, user.PasswordHash)
	require.Equal(t, "g-1", *user.GoogleID)

	_, err = f.auth.RefreshAccessToken(ctx, res.RefreshToken)
	require.NoError(t, err)
}

func TestCompleteAuthLinksExistingAccount(t *testing.T) {
	f := newFixture(t, testConfig("http://unused"))
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, domain.RegisterRequest{Email: "alice@example.com", Password: "secret1", Username: "alice"})
	require.NoError(t, err)

	res, err := f.svc.CompleteAuth(ctx, domain.Identity{ID: "g-9", Email: "ALICE@example.com"})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, res.User.ID)

	user, err := f.users.FindByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Equal(t, "g-9", *user.GoogleID)
	require.NotNil(t, user.PasswordHash)
}

func TestCompleteAuthUsernameCollision(t *testing.T) {
	f := newFixture(t, testConfig("http://unused"))
	ctx := context.Background()

	_, err := f.auth.Register(ctx, domain.RegisterRequest{Email: "a@one.com", Password: "secret1", Username: "alice"})
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, domain.RegisterRequest{Email: "a@two.com", Password: "secret1", Username: "alice2"})
	require.NoError(t, err)

	res, err := f.svc.CompleteAuth(ctx, domain.Identity{ID: "g-2", Email: "alice@gmail.com"})
	require.NoError(t, err)
	require.Equal(t, "alice3", res.User.Username)
}

func TestCompleteAuthFallbackUsername(t *testing.T) {
	f := newFixture(t, testConfig("http://unused"))
	res, err := f.svc.CompleteAuth(context.Background(), domain.Identity{ID: "g-3", Email: "...@example.com"})
	require.NoError(t, err)
	require.Equal(t, "user", res.User.Username)
}

func TestCompleteAuthMissingFields(t *testing.T) {
	f := newFixture(t, testConfig("http://unused"))
	for _, id := range []domain.Identity{{ID: "x"}, {Email: "a@example.com"}} {
		_, err := f.svc.CompleteAuth(context.Background(), id)
		require.ErrorIs(t, err, domain.ErrMissingRequiredFields)
	}
}

func TestNewStateIsRandom(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.False(t, strings.ContainsAny(a, "+/="))
}
