package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yusufstar/photoai/internal/logger"
)

// userIDKey is the Gin context key the authenticated user ID is stored under.
const userIDKey = "userID"

// Auth returns a middleware that validates the auth provider's bearer token
// (HS256, shared JWT secret) and exposes the user ID to handlers.
// Parameters:
//   - jwtSecret: shared signing secret issued by the auth provider.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func Auth(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(userIDKey, subject)
		c.Request = c.Request.WithContext(logger.SetUserID(c.Request.Context(), subject))

		c.Next()
	}
}

// UserID returns the authenticated user's ID set by the Auth middleware.
// Parameters:
//   - c: Gin request context.
// Returns:
//   - string: user ID, empty when unauthenticated.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
