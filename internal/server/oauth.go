package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	authoauth "github.com/smallbiznis/hushbox/internal/auth/oauth"
	"github.com/smallbiznis/hushbox/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	oauthSuccessRedirect = "/dashboard"
	oauthErrorRedirect   = "/auth/login?error="

	oauthErrGoogleFailed = "google_auth_failed"
	oauthErrNoCode       = "no_auth_code"
	oauthErrInvalidState = "invalid_state"
)

func (s *Server) GoogleAuth(c *gin.Context) {
	if !s.oauthsvc.Enabled() {
		AbortWithError(c, failure(authoauth.ErrNotConfigured, "Failed to generate Google auth URL"))
		return
	}

	state, err := authoauth.NewState()
	if err != nil {
		AbortWithError(c, failure(err, "Failed to generate Google auth URL"))
		return
	}

	s.sessions.SetState(c, state)
	c.JSON(http.StatusOK, gin.H{"authUrl": s.oauthsvc.BuildAuthorizationURL(state)})
}

func (s *Server) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	storedState, _ := s.sessions.State(c)
	s.sessions.ClearState(c)

	if providerErr := strings.TrimSpace(c.Query("error")); providerErr != "" {
		log.Warn("google oauth error", zap.String("error", providerErr))
		s.redirectOAuthError(c, oauthErrGoogleFailed)
		return
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		s.redirectOAuthError(c, oauthErrNoCode)
		return
	}

	state := c.Query("state")
	if storedState == "" || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(storedState)) != 1 {
		s.redirectOAuthError(c, oauthErrInvalidState)
		return
	}

	accessToken, err := s.oauthsvc.ExchangeCode(ctx, code)
	if err != nil {
		log.Warn("google code exchange failed", zap.Error(err))
		s.redirectOAuthError(c, oauthErrGoogleFailed)
		return
	}

	identity, err := s.oauthsvc.FetchIdentity(ctx, accessToken)
	if err != nil {
		log.Warn("google identity fetch failed", zap.Error(err))
		s.redirectOAuthError(c, oauthErrGoogleFailed)
		return
	}

	result, err := s.oauthsvc.CompleteAuth(ctx, identity)
	if err != nil {
		reason := oauthErrGoogleFailed
		var authErr *authdomain.Error
		if errors.As(err, &authErr) {
			reason = authErr.Message
		} else {
			log.Error("google sign-in failed", zap.Error(err))
		}
		s.redirectOAuthError(c, reason)
		return
	}
	s.obsMetrics.RecordAuthEvent(ctx, "google", authOutcomeSuccess)

	s.sessions.SetTokens(c, result.AccessToken, result.RefreshToken)
	c.Redirect(http.StatusTemporaryRedirect, oauthSuccessRedirect)
}

func (s *Server) redirectOAuthError(c *gin.Context, reason string) {
	s.obsMetrics.RecordAuthEvent(c.Request.Context(), "google", authOutcomeFailure)
	c.Redirect(http.StatusTemporaryRedirect, oauthErrorRedirect+url.QueryEscape(reason))
}
