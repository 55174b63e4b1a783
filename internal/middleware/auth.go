package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Header and context keys for request attribution. Identity is owned by an
// external collaborator (the session-terminating proxy); this service only
// trusts it to attribute a donation attempt, never to authorize a status
// mutation.
const (
	payerRefHeader = "X-Payer-Ref"
	adminKeyHeader = "X-Admin-Key"

	// PayerRefKey is the gin context key holding the authenticated payer.
	PayerRefKey = "payerRef"
)

// RequirePayer returns middleware that rejects requests without an
// attributed payer identity.
func RequirePayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		payerRef := c.GetHeader(payerRefHeader)
		if payerRef == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(PayerRefKey, payerRef)
		c.Next()
	}
}

// RequireAdmin returns middleware that guards the manual status-update path
// behind the configured operator key. With no key configured the path is
// disabled entirely rather than left open.
func RequireAdmin(adminAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(adminKeyHeader)
		if adminAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(adminAPIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "elevated access required"})
			return
		}

		c.Next()
	}
}

// PayerRef extracts the attributed payer identity from the context.
func PayerRef(c *gin.Context) string {
	return c.GetString(PayerRefKey)
}
