package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	authoauth "github.com/smallbiznis/hushbox/internal/auth/oauth"
	messagedomain "github.com/smallbiznis/hushbox/internal/message/domain"
	"github.com/smallbiznis/hushbox/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	codeValidation   = "validation_error"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "not_found"
	codeRateLimited  = "rate_limited"
	codeInternal     = "internal_error"

	msgSomethingWrong = "Something went wrong"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not_found")
	ErrTooManyRequests = errors.New("too_many_requests")
)

// httpError pins the status and client message for err. The cause is logged,
// never written to the client.
type httpError struct {
	status  int
	code    string
	message string
	cause   error
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("request failed",
				zap.String("route", c.FullPath()),
				zap.Error(lastErr.Err),
			)
		}
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// withStatus reports an expected auth failure with the given status. Anything
// else is an unexpected failure.
func withStatus(err error, status int) error {
	kind, ok := authdomain.KindOf(err)
	if !ok {
		return failure(err, msgSomethingWrong)
	}
	return &httpError{status: status, code: string(kind), message: err.Error(), cause: err}
}

// failure is a 500 carrying an endpoint-specific message.
func failure(err error, message string) error {
	return &httpError{status: http.StatusInternalServerError, code: codeInternal, message: message, cause: err}
}

func validationError(message string) error {
	return &httpError{status: http.StatusBadRequest, code: codeValidation, message: message}
}

func unauthorizedError(message string) error {
	return &httpError{status: http.StatusUnauthorized, code: codeUnauthorized, message: message}
}

func mapError(err error) (int, errorResponse) {
	status, code, message := classify(err)
	return status, errorResponse{Success: false, Error: message, Code: code}
}

func classify(err error) (int, string, string) {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.status, httpErr.code, httpErr.message
	}

	if kind, ok := authdomain.KindOf(err); ok {
		switch kind {
		case authdomain.KindInvalidToken, authdomain.KindInvalidRefreshToken, authdomain.KindRefreshTokenExpired:
			return http.StatusUnauthorized, string(kind), err.Error()
		case authdomain.KindUserNotFound:
			return http.StatusNotFound, string(kind), err.Error()
		default:
			return http.StatusBadRequest, string(kind), err.Error()
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, codeUnauthorized, "Unauthorized"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, codeNotFound, "Not found"
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, codeRateLimited, "Too many requests"
	case errors.Is(err, messagedomain.ErrMessageNotFound):
		return http.StatusNotFound, codeNotFound, "Message not found"
	case errors.Is(err, messagedomain.ErrRecipientNotFound):
		return http.StatusNotFound, string(authdomain.KindUserNotFound), "User not found"
	case errors.Is(err, messagedomain.ErrInvalidStatus):
		return http.StatusBadRequest, codeValidation, "Invalid status"
	case errors.Is(err, messagedomain.ErrContentRequired):
		return http.StatusBadRequest, codeValidation, "Username and content are required"
	case errors.Is(err, messagedomain.ErrContentTooLong):
		return http.StatusBadRequest, codeValidation, "Message content cannot exceed 500 characters"
	case errors.Is(err, authoauth.ErrNotConfigured):
		return http.StatusInternalServerError, codeInternal, "Google sign-in is not configured"
	default:
		return http.StatusInternalServerError, codeInternal, msgSomethingWrong
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, code, _ := classify(err)
	switch {
	case status == http.StatusBadRequest:
		return "validation_error", code
	case status == http.StatusUnauthorized:
		return "unauthorized", code
	case status == http.StatusNotFound:
		return "not_found", code
	case status == http.StatusTooManyRequests:
		return "rate_limited", code
	default:
		return "internal_error", code
	}
}
