package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/hushbox/internal/auth/token"
	"github.com/smallbiznis/hushbox/internal/config"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
	StateCookieName   = "oauth_state"

	statePath = "/api/auth/google"
	stateTTL  = 10 * time.Minute
)

// Manager reads and writes the auth cookies.
type Manager struct {
	secure bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{secure: cfg.AuthCookieSecure}
}

func (m *Manager) Secure() bool {
	return m.secure
}

func (m *Manager) AccessToken(c *gin.Context) (string, bool) {
	return readCookie(c, AccessCookieName)
}

func (m *Manager) RefreshToken(c *gin.Context) (string, bool) {
	return readCookie(c, RefreshCookieName)
}

func (m *Manager) State(c *gin.Context) (string, bool) {
	return readCookie(c, StateCookieName)
}

// SetTokens writes both auth cookies. An empty refresh token leaves that cookie untouched.
func (m *Manager) SetTokens(c *gin.Context, accessToken, refreshToken string) {
	m.set(c, AccessCookieName, accessToken, token.AccessTTL, "/")
	if refreshToken != "" {
		m.set(c, RefreshCookieName, refreshToken, token.RefreshTTL, "/")
	}
}

func (m *Manager) ClearTokens(c *gin.Context) {
	m.set(c, AccessCookieName, "", -1, "/")
	m.set(c, RefreshCookieName, "", -1, "/")
}

func (m *Manager) SetState(c *gin.Context, state string) {
	m.set(c, StateCookieName, state, stateTTL, statePath)
}

func (m *Manager) ClearState(c *gin.Context) {
	m.set(c, StateCookieName, "", -1, statePath)
}

func (m *Manager) set(c *gin.Context, name, value string, ttl time.Duration, path string) {
	maxAge := -1
	if ttl > 0 {
		maxAge = int(ttl.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, path, "", m.secure, true)
}

func readCookie(c *gin.Context, name string) (string, bool) {
	value, err := c.Cookie(name)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
