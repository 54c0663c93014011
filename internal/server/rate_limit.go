package server

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/hushbox/internal/config"
	"github.com/smallbiznis/hushbox/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	rateLimitEndpointSignin = "signin"
	rateLimitEndpointSend   = "message_send"

	rateLimitReasonClientRate = "client-rate"
)

func signinLimit(l config.Limits) config.RateLimit { return l.Signin }

func sendLimit(l config.Limits) config.RateLimit { return l.MessageSend }

// RateLimit throttles each client IP with the policy selected from the current
// limits. A limiter failure lets the request through.
func (s *Server) RateLimit(endpoint string, policy func(config.Limits) config.RateLimit) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || s.limits == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		limit := policy(s.limits.Get())
		key := "ratelimit:" + endpoint + ":" + c.ClientIP()

		result, err := s.limiter.Allow(ctx, key, limit.Rate, limit.Burst)
		if err != nil {
			logger.FromContext(ctx).Warn("rate limit check failed",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !result.Allowed {
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonClientRate)
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}
