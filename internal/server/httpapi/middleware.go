package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/logging"
	"github.com/dmitrijs2005/gophshare/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionKey      = "session"
	requestIDHeader = "X-Request-ID"
)

// accessTokenMiddleware authenticates the bearer token and stores the
// caller's session in the gin context.
func (s *Server) accessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		accessToken, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || accessToken == "" {
			abortWithError(c, http.StatusUnauthorized, access.Unauthenticated, "missing token")
			return
		}

		claims, err := auth.ParseToken(accessToken, s.jwtSecret)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = common.ErrTokenExpired.Error()
			}
			abortWithError(c, http.StatusUnauthorized, access.Unauthenticated, msg)
			return
		}

		c.Set(sessionKey, access.Session{UserID: claims.UserID, Email: claims.Email})
		c.Next()
	}
}

// sessionFrom returns the session set by accessTokenMiddleware.
func sessionFrom(c *gin.Context) access.Session {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(access.Session)
	return sess
}

// requestLogger tags every request with an id, logs it and records latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "request_id", id))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(c.Request.Method, route, status, elapsed)

		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
		}
		if sess := sessionFrom(c); sess.Valid() {
			args = append(args, "user_id", sess.UserID)
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error(c.Request.Context(), "request failed", args...)
		} else {
			s.logger.Debug(c.Request.Context(), "request served", args...)
		}
	}
}
