package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	authOutcomeSuccess = "success"
	authOutcomeFailure = "failure"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"required,min=3,username"`
}

var signupRules = []fieldRule{
	{Field: "Email", Tag: "required", Message: "Email, password, and username are required"},
	{Field: "Password", Tag: "required", Message: "Email, password, and username are required"},
	{Field: "Username", Tag: "required", Message: "Email, password, and username are required"},
	{Field: "Password", Tag: "min", Message: "Password must be at least 6 characters long"},
	{Field: "Username", Tag: "min", Message: "Username must be at least 3 characters long"},
	{Field: "Username", Tag: "username", Message: "Username can only contain letters, numbers, and underscores"},
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var signinRules = []fieldRule{
	{Field: "Email", Tag: "required", Message: "Email and password are required"},
	{Field: "Password", Tag: "required", Message: "Email and password are required"},
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

var changePasswordRules = []fieldRule{
	{Field: "CurrentPassword", Tag: "required", Message: "New password must be at least 6 characters long"},
	{Field: "NewPassword", Tag: "required", Message: "New password must be at least 6 characters long"},
	{Field: "NewPassword", Tag: "min", Message: "New password must be at least 6 characters long"},
}

type UpdateUsernameRequest struct {
	NewUsername string `json:"newUsername" binding:"required,min=3,username"`
}

var updateUsernameRules = []fieldRule{
	{Field: "NewUsername", Tag: "required", Message: "Username must be at least 3 characters long"},
	{Field: "NewUsername", Tag: "min", Message: "Username must be at least 3 characters long"},
	{Field: "NewUsername", Tag: "username", Message: "Username can only contain letters, numbers, and underscores"},
}

func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := bindJSON(c, &req, signupRules); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	result, err := s.authsvc.Register(ctx, authdomain.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		s.obsMetrics.RecordAuthEvent(ctx, "signup", authOutcomeFailure)
		AbortWithError(c, withStatus(err, http.StatusBadRequest))
		return
	}
	s.obsMetrics.RecordAuthEvent(ctx, "signup", authOutcomeSuccess)

	s.sessions.SetTokens(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.User,
		"message": "Account created successfully!",
	})
}

func (s *Server) Signin(c *gin.Context) {
	var req SigninRequest
	if err := bindJSON(c, &req, signinRules); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	result, err := s.authsvc.Login(ctx, authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.obsMetrics.RecordAuthEvent(ctx, "signin", authOutcomeFailure)
		AbortWithError(c, withStatus(err, http.StatusBadRequest))
		return
	}
	s.obsMetrics.RecordAuthEvent(ctx, "signin", authOutcomeSuccess)

	s.sessions.SetTokens(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.User,
	})
}

func (s *Server) Signout(c *gin.Context) {
	refreshToken, _ := s.sessions.RefreshToken(c)
	if err := s.authsvc.Logout(c.Request.Context(), refreshToken); err != nil {
		AbortWithError(c, failure(err, msgSomethingWrong))
		return
	}

	s.sessions.ClearTokens(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) Refresh(c *gin.Context) {
	refreshToken, ok := s.sessions.RefreshToken(c)
	if !ok {
		AbortWithError(c, unauthorizedError("No refresh token provided"))
		return
	}

	ctx := c.Request.Context()
	result, err := s.authsvc.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		s.obsMetrics.RecordAuthEvent(ctx, "refresh", authOutcomeFailure)
		AbortWithError(c, withStatus(err, http.StatusUnauthorized))
		return
	}
	s.obsMetrics.RecordAuthEvent(ctx, "refresh", authOutcomeSuccess)

	s.sessions.SetTokens(c, result.AccessToken, "")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.User,
	})
}

func (s *Server) Verify(c *gin.Context) {
	accessToken, ok := s.accessToken(c)
	if !ok {
		AbortWithError(c, unauthorizedError("No access token provided"))
		return
	}

	user, err := s.authsvc.VerifyAccessToken(c.Request.Context(), accessToken)
	if err != nil {
		AbortWithError(c, withStatus(err, http.StatusUnauthorized))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

func (s *Server) ChangePassword(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := bindJSON(c, &req, changePasswordRules); err != nil {
		AbortWithError(c, err)
		return
	}

	keep, _ := s.sessions.RefreshToken(c)
	ctx := c.Request.Context()
	err := s.authsvc.ChangePassword(ctx, authdomain.ChangePasswordRequest{
		UserID:           userID,
		CurrentPassword:  req.CurrentPassword,
		NewPassword:      req.NewPassword,
		KeepRefreshToken: keep,
	})
	if err != nil {
		s.obsMetrics.RecordAuthEvent(ctx, "change_password", authOutcomeFailure)
		AbortWithError(c, withStatus(err, http.StatusBadRequest))
		return
	}
	s.obsMetrics.RecordAuthEvent(ctx, "change_password", authOutcomeSuccess)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) UpdateUsername(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req UpdateUsernameRequest
	if err := bindJSON(c, &req, updateUsernameRules); err != nil {
		AbortWithError(c, err)
		return
	}

	user, err := s.authsvc.UpdateUsername(c.Request.Context(), claims.UserID, req.NewUsername)
	if err != nil {
		AbortWithError(c, withStatus(err, http.StatusBadRequest))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

func (s *Server) DeleteAccount(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	if err := s.authsvc.DeleteAccount(ctx, claims.UserID); err != nil {
		AbortWithError(c, withStatus(err, http.StatusBadRequest))
		return
	}
	logger.FromContext(ctx).Info("account deleted", zap.String("user_id", claims.UserID.String()))
	s.obsMetrics.RecordAuthEvent(ctx, "delete_account", authOutcomeSuccess)

	s.sessions.ClearTokens(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
