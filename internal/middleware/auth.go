package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eld-compliance/internal/config"
	"eld-compliance/pkg/utils"
)

// AuthMiddleware authenticates fleet-manager API calls with a bearer JWT
// and places the caller's identity and company scope in the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWT.Secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		companyID, err := uuid.Parse(claims.CompanyID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Token carries no valid company scope")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("companyID", companyID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// CompanyID returns the authenticated caller's company scope. The zero
// UUID means the request never passed AuthMiddleware.
func CompanyID(c *gin.Context) uuid.UUID {
	v, exists := c.Get("companyID")
	if !exists {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
