package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// apikeyAuthentication protects internal-only endpoints with a static
// api token.
func (s *Server) apikeyAuthentication(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiToken := c.GetHeader("Api-Token")
		if apiToken == "" || apiToken != key {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
