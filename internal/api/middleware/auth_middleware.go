package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SapotaDA/TaskFlow/internal/domain/user"
	"github.com/SapotaDA/TaskFlow/pkg/security/auth"
)

const (
	bearerSchema = "Bearer "
	// ContextUserID is the gin context key holding the caller's user id
	ContextUserID = "user_id"
)

// NewAuthMiddleware validates the bearer token and records activity.
// The lastSeen touch is fire-and-forget: it must never block or fail
// the request.
func NewAuthMiddleware(jwtService *auth.JWTService, users user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(authHeader[len(bearerSchema):])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)

		users.TouchLastSeen(claims.UserID)

		c.Next()
	}
}

// UserIDFromContext extracts the authenticated user's id set by the
// auth middleware.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
