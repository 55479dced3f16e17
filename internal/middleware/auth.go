// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header",
			})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Set agent info in context
		c.Set("agent_id", claims.AgentID)
		c.Set("agent_code", claims.AgentCode)
		c.Set("agent_role", claims.Role)
		c.Next()
	}
}

func OperatorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("agent_role")
		if !exists || role != string(models.AgentRoleOperator) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Operator access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
