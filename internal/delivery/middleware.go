package delivery

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	sessionKey      = "session"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  time.Since(startTime).Milliseconds(),
		})
		if reqID := c.Writer.Header().Get(requestIDHeader); reqID != "" {
			entry = entry.WithField("request_id", reqID)
		}
		if s := sessionFrom(c); s.Authenticated() {
			entry = entry.WithField("user_id", s.UserID)
		}

		switch {
		case len(c.Errors) > 0 && statusCode >= 500:
			entry.Error(c.Errors.String())
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionMiddleware resolves the bearer token, when present, to a session.
// Requests without a usable token continue as anonymous visitors.
func SessionMiddleware(resolver SessionResolver, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}

		session, err := resolver.ResolveToken(c.Request.Context(), raw)
		switch {
		case err == nil:
			c.Set(sessionKey, session)
		case errors.Is(err, domain.ErrNotAuthenticated):
			log.Debugf("Middleware: Ignoring unusable token: %v", err)
		default:
			log.Errorf("Middleware: Session lookup failed: %v", err)
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, Response{Status: "Fail", Message: "Session store unavailable"})
			return
		}
		c.Next()
	}
}

// sessionFrom returns the request's session or nil for anonymous visitors.
func sessionFrom(c *gin.Context) *domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*domain.Session); ok {
			return s
		}
	}
	return nil
}
