package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/auth"
	"github.com/pulsesocial/pulse/internal/db"
	"github.com/pulsesocial/pulse/internal/models"
	"github.com/pulsesocial/pulse/pkg/logging"
	"github.com/pulsesocial/pulse/pkg/telemetry"
)

const (
	ctxUserKey      = "currentUser"
	requestIDHeader = "X-Request-ID"
)

// RequestID assigns every request an identifier, honoring one sent by
// the client
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// Tracing opens a span per request, named after the matched route so
// all requests to one endpoint share a span name. Handlers see the
// span context through c.Request.Context(), so repository calls made
// with it become child spans.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := telemetry.StartSpan(c.Request.Context(), c.Request.Method+" "+route)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs one structured line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logging.WithRequestID(c.GetString("requestID")).Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Auth verifies the bearer token and loads the current user. The user
// row is fetched fresh so deactivation and demotion take effect on
// the next request, not at token expiry.
func Auth(tokens *auth.TokenManager, users *db.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, apperr.Unauthorized("authentication required"))
			return
		}

		claims, err := tokens.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(c, apperr.Unauthorized("invalid or expired token"))
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		if user == nil || !user.IsActive {
			respondError(c, apperr.Unauthorized("account is not active"))
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireStaff restricts a route to admin and owner roles
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := currentUser(c); user == nil || !user.IsStaff() {
			respondError(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// RequireOwner restricts a route to the owner role
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := currentUser(c); user == nil || user.Role != models.RoleOwner {
			respondError(c, apperr.Forbidden("owner access required"))
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user set by the Auth
// middleware, or nil on unauthenticated routes
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
