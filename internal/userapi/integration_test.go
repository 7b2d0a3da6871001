package userapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-admin-console/internal/core/auth"
	"user-admin-console/internal/domain"
	"user-admin-console/internal/repo"
	"user-admin-console/internal/transport/http/router"
	"user-admin-console/internal/transport/rest"
)

func init() { gin.SetMode(gin.TestMode) }

// backend runs the stand-in server over a fresh seeded store.
func backend(t *testing.T, jwter *auth.JWTer, opts ...rest.Option) *Client {
	t.Helper()
	store, err := repo.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, store.SeedSamples(context.Background()))
	srv := httptest.NewServer(router.NewAdminEngine(zap.NewNop(), router.Deps{Users: store, Auth: store, JWT: jwter}))
	t.Cleanup(srv.Close)

	rc, err := rest.NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return New(rc)
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	c := backend(t, nil)

	in := domain.UserCreateData{
		Username: "newbie", Email: "newbie@example.com", Name: "New Bie",
		Password: "password123", Role: domain.RoleManager,
	}
	created, err := c.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := c.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Username, got.Username)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Role, got.Role)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUpdateChangesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	c := backend(t, nil)

	before, err := c.GetByID(ctx, "2b3c4d5e")
	require.NoError(t, err)

	status := domain.StatusPending
	name := "Jane Kim"
	_, err = c.Update(ctx, before.ID, domain.UserUpdateData{Name: &name, Status: &status})
	require.NoError(t, err)

	after, err := c.GetByID(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Kim", after.Name)
	assert.Equal(t, domain.StatusPending, after.Status)
	assert.Equal(t, before.Username, after.Username)
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.Role, after.Role)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestGetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := backend(t, nil)

	a, err := c.GetByID(ctx, "1a2b3c4d")
	require.NoError(t, err)
	b, err := c.GetByID(ctx, "1a2b3c4d")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeleteTwiceSurfacesBackendError(t *testing.T) {
	ctx := context.Background()
	c := backend(t, nil)

	res, err := c.Delete(ctx, "3c4d5e6f")
	require.NoError(t, err)
	assert.Equal(t, "3c4d5e6f", res.ID)

	_, err = c.Delete(ctx, "3c4d5e6f")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, rest.StatusOf(err))
	assert.EqualError(t, err, "User not found")
}

func TestListPaginates(t *testing.T) {
	c := backend(t, nil)
	p, err := c.List(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 2, p.TotalPages)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "alicejones", p.Items[0].Username)
}

func TestBackendValidationMessage(t *testing.T) {
	c := backend(t, nil)
	_, err := c.Create(context.Background(), domain.UserCreateData{
		Username: "ab", Email: "ab@example.com", Name: "Ab", Password: "password123",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rest.StatusOf(err))
	assert.Contains(t, err.Error(), "username must be at least 3 characters")
}

func TestDuplicateUsernameConflict(t *testing.T) {
	c := backend(t, nil)
	_, err := c.Create(context.Background(), domain.UserCreateData{
		Username: "johndoe", Email: "x@example.com", Name: "Dup", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rest.StatusOf(err))
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rc, err := rest.NewClient(url)
	require.NoError(t, err)
	_, err = New(rc).List(context.Background(), 1, 10)
	assert.True(t, rest.IsNetwork(err))
	assert.EqualError(t, err, "Network error")
}

func TestJWTGate(t *testing.T) {
	ctx := context.Background()
	jwter := &auth.JWTer{Secret: []byte("s3cret"), Issuer: "user-admin", TTL: time.Hour}

	anon := backend(t, jwter)
	_, err := anon.List(ctx, 1, 10)
	assert.Equal(t, http.StatusUnauthorized, rest.StatusOf(err))

	user := backend(t, jwter, rest.WithTokenSource(auth.NewMinter(jwter, "2b3c4d5e", auth.RoleUser)))
	_, err = user.List(ctx, 1, 10)
	assert.Equal(t, http.StatusForbidden, rest.StatusOf(err))

	admin := backend(t, jwter, rest.WithTokenSource(auth.NewMinter(jwter, "console", auth.RoleAdmin)))
	p, err := admin.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, p.Items, 4)
}
