package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user-admin-console/internal/core/auth"
	"user-admin-console/internal/transport/http/ez"
	resp "user-admin-console/internal/transport/http/response"
)

// AuthJWT rejects requests without a valid bearer token. requireRole "" accepts any role.
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail(http.StatusUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail(http.StatusUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Fail(http.StatusForbidden, "forbidden"))
			return
		}
		c.Set("claims", claims)
		c.Set(ez.CtxUserID, claims.UID)
		c.Set(ez.CtxRole, claims.Role)
		c.Next()
	}
}
