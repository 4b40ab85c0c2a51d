package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studiodesk/internal/pkg/jwt"
	"studiodesk/internal/pkg/response"
)

const operatorKey = "operator_id"

// JWTAuth requires a bearer token and stores the operator id on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		scheme, tokenStr, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(tokenStr))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(operatorKey, claims.OperatorID)
		if claims.Name != "" {
			c.Set("operator_name", claims.Name)
		}

		c.Next()
	}
}

// OperatorID returns the authenticated operator, or "" outside JWTAuth.
func OperatorID(c *gin.Context) string {
	return c.GetString(operatorKey)
}
