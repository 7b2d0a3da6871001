package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user-admin-console/internal/core/auth"
	"user-admin-console/internal/domain"
	"user-admin-console/internal/transport/http/ez"
)

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type AuthHandler struct {
	users Authenticator
	jwter *auth.JWTer
}

func NewAuthHandler(users Authenticator, jwter *auth.JWTer) *AuthHandler {
	return &AuthHandler{users: users, jwter: jwter}
}

type loginIn struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginOut struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Mount registers POST /auth/login on a public group.
func (h *AuthHandler) Mount(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := h.users.Authenticate(c, strings.TrimSpace(in.Username), in.Password)
			if err != nil {
				return loginOut{}, ez.Unauthorized("invalid credentials")
			}
			tok, err := h.jwter.Issue(u.ID, string(u.Role))
			if err != nil || tok == "" {
				return loginOut{}, ez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, User: u}, nil
		},
	})
}
