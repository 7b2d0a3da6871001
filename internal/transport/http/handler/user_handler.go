package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-admin-console/internal/domain"
	"user-admin-console/internal/transport/http/ez"
	resp "user-admin-console/internal/transport/http/response"
	"user-admin-console/internal/validation"
)

// UserHandler serves the users REST contract over any repository.
type UserHandler struct {
	repo domain.UserRepository
	log  *zap.Logger
}

func NewUserHandler(repo domain.UserRepository, l *zap.Logger) *UserHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserHandler{repo: repo, log: l}
}

type listQ struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Mount registers /users routes on g.
func (h *UserHandler) Mount(g *gin.RouterGroup, roles ...string) {
	e := ez.New(g)

	// --- GET /users?page=&limit= ---
	ez.RegisterAction(e, ez.Action[listQ, *domain.Page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Roles:  roles,
		Handler: func(c *gin.Context, in *listQ) (*domain.Page[domain.User], error) {
			if in.Limit > 100 {
				in.Limit = 100
			}
			p, err := h.repo.List(c, in.Page, in.Limit)
			if err != nil {
				return nil, ez.FromDomain(err)
			}
			return p, nil
		},
	})

	// --- GET /users/:id ---
	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Roles:  roles,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			u, err := h.repo.GetByID(c, c.Param("id"))
			if err != nil {
				return nil, ez.FromDomain(err)
			}
			return u, nil
		},
	})

	// --- POST /users ---
	ez.RegisterAction(e, ez.Action[domain.UserCreateData, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Roles:  roles,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.UserCreateData) (*domain.User, error) {
			in.Username = strings.TrimSpace(in.Username)
			role := in.Role
			if role == "" {
				role = domain.RoleUser
			}
			if err := validation.Validate(validation.ModeCreate, validation.FormValues{
				Username: in.Username, Email: in.Email, Name: in.Name,
				Password: in.Password, Role: role,
			}); err != nil {
				return nil, badInput(err)
			}
			u, err := h.repo.Create(c, *in)
			if err != nil {
				return nil, ez.FromDomain(err)
			}
			h.log.Info("user created", zap.String("id", u.ID), zap.String("username", u.Username))
			return u, nil
		},
	})

	// --- PUT /users/:id（只更新提交的字段） ---
	ez.RegisterAction(e, ez.Action[domain.UserUpdateData, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Roles:  roles,
		Handler: func(c *gin.Context, in *domain.UserUpdateData) (*domain.User, error) {
			if err := checkUpdate(*in); err != nil {
				return nil, badInput(err)
			}
			u, err := h.repo.Update(c, c.Param("id"), *in)
			if err != nil {
				return nil, ez.FromDomain(err)
			}
			return u, nil
		},
	})

	// --- DELETE /users/:id ---
	ez.RegisterAction(e, ez.Action[struct{}, resp.Deleted]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Roles:  roles,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Deleted, error) {
			res, err := h.repo.Delete(c, c.Param("id"))
			if err != nil {
				return resp.Deleted{}, ez.FromDomain(err)
			}
			h.log.Info("user deleted", zap.String("id", res.ID))
			return resp.Deleted{ID: res.ID, Message: "User deleted successfully"}, nil
		},
	})
}

// checkUpdate applies the form rules to the fields that were sent.
func checkUpdate(in domain.UserUpdateData) error {
	if in.IsEmpty() {
		return errors.New("no fields to update")
	}
	return validation.ValidateUpdate(in)
}

func badInput(err error) error {
	if fe, ok := validation.AsErrors(err); ok {
		return ez.BadRequest(fe.Summary())
	}
	return ez.BadRequest(err.Error())
}
