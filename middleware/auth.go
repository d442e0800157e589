package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medislot/models"
	"medislot/utils"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// JWTAuthMiddleware resolves the caller identity from a bearer token and stores it on the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		identity, err := utils.ExtractIdentity(tokenString)
		if err != nil {
			zap.L().Debug("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ctxUserID, identity.UserID)
		c.Set(ctxRole, identity.Role)
		c.Next()
	}
}

// RequireRole lets through only callers whose role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		zap.L().Warn("role not allowed",
			zap.String("userID", c.GetString(ctxUserID)),
			zap.String("role", role),
			zap.String("path", c.FullPath()))
		utils.WriteError(c, utils.ErrForbiddenRole)
		c.Abort()
	}
}

// Identity returns what JWTAuthMiddleware stored for this request.
func Identity(c *gin.Context) models.Identity {
	return models.Identity{UserID: c.GetString(ctxUserID), Role: c.GetString(ctxRole)}
}
