package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medipal/logger"
	"medipal/models"
	"medipal/services"
)

// TokenVerifier resolves a caller identity from a bearer token.
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

const identityKey = "identity"

// AuthRequired rejects requests that do not carry a valid bearer token and
// stores the verified identity in the gin context for the handler. A
// missing or malformed Authorization header is rejected without attempting
// verification; all verification failures get the same response body.
func AuthRequired(verifier TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			log.Warn("auth rejected", "error", services.ErrMissingToken)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			log.Warn("auth verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired Supabase token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// bearerToken extracts the credential from a case-insensitive Bearer
// scheme, or returns "" when the header does not carry one.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Identity returns the identity stored by AuthRequired.
func Identity(c *gin.Context) models.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(models.Identity)
	return identity
}
