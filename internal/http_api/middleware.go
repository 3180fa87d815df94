package http_api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fracta-city/fracta/internal/models"
)

const (
	userContextKey  = "user"
	tokenContextKey = "token"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authRequired resolves the bearer token to the acting user.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			s.writeError(c, models.NewUnauthenticatedError("missing bearer token", nil))
			c.Abort()
			return
		}
		user, err := s.fracta.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			s.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(userContextKey, user)
		c.Set(tokenContextKey, token)
		c.Next()
	}
}

// adminRequired must run after authRequired.
func (s *HTTPServer) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "admin access required",
			})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}
