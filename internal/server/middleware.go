package server

import (
	"time"

	"github.com/gin-gonic/gin"
)

// UserHeader carries the learner id on requests and responses.
const UserHeader = "X-User-Id"

const userKey = "userID"

// ensureUser resolves the learner for the request, creating an anonymous
// one when the header is missing, and echoes the id back.
func (s *Server) ensureUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, created, err := s.svc.EnsureUser(c.Request.Context(), c.GetHeader(UserHeader))
		if err != nil {
			s.respondError(c, err)
			return
		}
		if created {
			s.logger.Debug("anonymous user issued", "user", u.ID)
		}
		c.Set(userKey, u.ID)
		c.Header(UserHeader, u.ID)
		c.Next()
	}
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"user", c.GetString(userKey),
		)
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}
