// internal/transport/http/router/admin.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-admin-console/internal/core/auth"
	"user-admin-console/internal/core/server"
	"user-admin-console/internal/domain"
	"user-admin-console/internal/transport/http/handler"
)

// Deps of the stand-in users backend. JWT nil leaves /users open.
type Deps struct {
	Users domain.UserRepository
	Auth  handler.Authenticator
	JWT   *auth.JWTer
}

func NewAdminEngine(l *zap.Logger, d Deps) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(Metrics())

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 登录（公共）
	if d.JWT != nil && d.Auth != nil {
		handler.NewAuthHandler(d.Auth, d.JWT).Mount(&r.RouterGroup)
	}

	// 用户管理（开启 JWT 时要求 admin 角色）
	users := r.Group("")
	if d.JWT != nil {
		users.Use(AuthJWT(d.JWT, auth.RoleAdmin))
	}
	handler.NewUserHandler(d.Users, l).Mount(users)

	return r
}
