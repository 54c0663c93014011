package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
)

func (s *Server) GetPublicProfile(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		AbortWithError(c, authdomain.ErrUserNotFound)
		return
	}

	if profile, ok := s.profiles.Get(username); ok {
		c.JSON(http.StatusOK, gin.H{"user": profile})
		return
	}

	profile, err := s.authsvc.PublicProfile(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			AbortWithError(c, authdomain.ErrUserNotFound)
			return
		}
		AbortWithError(c, failure(err, msgSomethingWrong))
		return
	}

	s.profiles.Set(username, *profile)
	c.JSON(http.StatusOK, gin.H{"user": profile})
}
