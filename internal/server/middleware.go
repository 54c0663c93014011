package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/hushbox/internal/auth/token"
	obscontext "github.com/smallbiznis/hushbox/internal/observability/context"
)

const (
	contextUserIDKey = "user_id"
	contextClaimsKey = "auth_claims"
)

// AuthRequired verifies the access token statelessly and exposes its claims to
// the handler.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := s.accessToken(c)
		if !ok {
			AbortWithError(c, unauthorizedError("Unauthorized"))
			return
		}

		claims, ok := s.tokens.VerifyAccess(raw)
		if !ok {
			AbortWithError(c, unauthorizedError("Invalid token"))
			return
		}

		c.Set(contextUserIDKey, claims.UserID.String())
		c.Set(contextClaimsKey, claims)
		c.Request = c.Request.WithContext(obscontext.WithUserID(c.Request.Context(), claims.UserID.String()))
		c.Next()
	}
}

// accessToken reads the access cookie, falling back to a Bearer header.
func (s *Server) accessToken(c *gin.Context) (string, bool) {
	if raw, ok := s.sessions.AccessToken(c); ok {
		return raw, true
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		if raw := strings.TrimSpace(header[len("Bearer "):]); raw != "" {
			return raw, true
		}
	}
	return "", false
}

func claimsFromContext(c *gin.Context) (token.Claims, bool) {
	value, ok := c.Get(contextClaimsKey)
	if !ok {
		return token.Claims{}, false
	}
	claims, ok := value.(token.Claims)
	return claims, ok
}

func userIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	claims, ok := claimsFromContext(c)
	if !ok || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
