package handlers

import (
	"net/http"
	"strings"

	"garage_gateway/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey   = "user"
	apiKeyHeader = "X-API-Key"
)

// authMiddleware resolves the caller's identity from, in order: an API key
// header, HTTP basic auth, or a bearer token. Requests with none of the
// three fail closed.
func (h *Handler) authMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	if key := c.GetHeader(apiKeyHeader); key != "" {
		u, err := h.services.AuthenticateAPIKey(ctx, key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
		return
	}

	if username, password, ok := c.Request.BasicAuth(); ok {
		u, err := h.services.Authenticate(ctx, username, password)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header format"})
		return
	}
	u, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	c.Set(ctxUserKey, u)
	c.Next()
}

// currentUser returns the identity stored by authMiddleware.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
