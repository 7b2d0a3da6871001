package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-admin-console/internal/core/auth"
	"user-admin-console/internal/repo"
)

func newEngine(t *testing.T, jwter *auth.JWTer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := repo.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, store.SeedSamples(context.Background()))
	return NewAdminEngine(zap.NewNop(), Deps{Users: store, Auth: store, JWT: jwter})
}

func serve(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newEngine(t, nil), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":1}`, w.Body.String())
}

func TestErrorBodyCarriesMessage(t *testing.T) {
	w := serve(newEngine(t, nil), http.MethodGet, "/users/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"User not found"}`, w.Body.String())

	w = serve(newEngine(t, nil), http.MethodPut, "/users/1a2b3c4d", `{"role":"root"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"role must be one of: admin, user, manager"}`, w.Body.String())

	w = serve(newEngine(t, nil), http.MethodPut, "/users/1a2b3c4d", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAppliesFormRulesToSentFields(t *testing.T) {
	r := newEngine(t, nil)
	cases := []struct{ body, msg string }{
		{`{"email":"nope"}`, "email must be a valid email address"},
		{`{"username":"` + strings.Repeat("u", 51) + `"}`, "username must be at most 50 characters"},
		{`{"name":"J"}`, "name must be at least 2 characters"},
		{`{"name":"` + strings.Repeat("n", 101) + `"}`, "name must be at most 100 characters"},
	}
	for _, tc := range cases {
		w := serve(r, http.MethodPut, "/users/2b3c4d5e", tc.body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.body)
		assert.JSONEq(t, `{"message":"`+tc.msg+`"}`, w.Body.String(), tc.body)
	}

	w := serve(r, http.MethodPut, "/users/2b3c4d5e", `{"name":"Jane Q","password":""}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Jane Q"`)
}

func TestLoginIssuesAdminToken(t *testing.T) {
	jwter := &auth.JWTer{Secret: []byte("s3cret"), Issuer: "user-admin", TTL: time.Hour}
	r := newEngine(t, jwter)

	w := serve(r, http.MethodPost, "/auth/login", `{"username":"johndoe","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/auth/login", `{"username":"johndoe","password":"`+repo.SamplePassword+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)

	w = serve(r, http.MethodGet, "/users?page=1&limit=2", "", out.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalPages":2`)

	w = serve(r, http.MethodGet, "/users", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"invalid token"}`, w.Body.String())
}

func TestMetricsRecordRouteTemplates(t *testing.T) {
	r := newEngine(t, nil)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/users?page=1&limit=2", "", "").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/users/1a2b3c4d", "", "").Code)
	require.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/users/missing", "", "").Code)

	w := serve(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/users",status="200"}`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/users/:id",status="200"}`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/users/:id",status="404"}`)
	assert.Contains(t, body, `http_request_duration_seconds_count{method="GET",path="/users"}`)
	assert.NotContains(t, body, "1a2b3c4d")
}
