package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDKey = "request_id"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(requestIDHeader, id)
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("gateway request")
	}
}

func recoveryMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("gateway panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// quotaMiddleware enforces the per-user request quota. Quota store
// failures let the request through.
func (s *Server) quotaMiddleware() gin.HandlerFunc {
	limit := s.cfg.UserRateLimit
	return func(c *gin.Context) {
		if s.quota == nil || limit.Requests <= 0 {
			c.Next()
			return
		}

		key := quotaKey(c)

		allowed, err := s.quota.Allow(c.Request.Context(), key, limit.Requests, limit.Window)
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("quota check failed")
			c.Next()
			return
		}
		if !allowed {
			metrics.IncRejected("quota")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// quotaKey buckets by user id when the header holds one and by client IP
// otherwise, so arbitrary header values share the caller's IP bucket.
func quotaKey(c *gin.Context) string {
	raw := strings.TrimSpace(c.GetHeader(models.UserIDHeader))
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return "ip:" + c.ClientIP()
}
